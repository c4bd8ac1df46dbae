package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/explanation"
)

type itemsApi struct {
	svc *explanation.Service
}

func registerItemsAPI(g *echo.Group, svc *explanation.Service) {
	api := itemsApi{svc: svc}

	ig := g.Group("/items")
	ig.POST("/resolve", api.resolve)
}

// resolve takes a raw explanation row and answers with its math or code item.
func (api *itemsApi) resolve(ctx echo.Context) error {
	raw, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading record")
	}

	item, err := api.svc.Resolve(ctx.Request().Context(), raw)
	if err != nil {
		return errors.Wrap(err, "resolving record")
	}

	return ctx.JSON(http.StatusOK, item)
}
