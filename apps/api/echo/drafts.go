package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/draft"
	"github.com/trezcool/masomo-studio/core/explanation"
)

type DraftResponse struct {
	Key   string     `json:"key"`
	Draft draft.Form `json:"draft"`
}

type draftsApi struct {
	svc *explanation.Service
}

func registerDraftsAPI(g *echo.Group, svc *explanation.Service) {
	api := draftsApi{svc: svc}

	dg := g.Group("/drafts")
	dg.POST("", api.create)
	dg.GET("/:key", api.retrieve)
	dg.PUT("/:key", api.update)
	dg.DELETE("/:key", api.destroy)
}

// Handlers

func (api *draftsApi) create(ctx echo.Context) error {
	key, form, err := api.svc.NewDraft(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "creating draft")
	}
	return ctx.JSON(http.StatusCreated, DraftResponse{Key: key, Draft: form})
}

func (api *draftsApi) retrieve(ctx echo.Context) error {
	key := ctx.Param("key")
	form, err := api.svc.LoadDraft(ctx.Request().Context(), key)
	if err != nil {
		if errors.Cause(err) == explanation.ErrDraftNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading draft")
	}
	return ctx.JSON(http.StatusOK, DraftResponse{Key: key, Draft: form})
}

func (api *draftsApi) update(ctx echo.Context) error {
	var data explanation.DraftInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DraftInput")
	}

	key := ctx.Param("key")
	form, err := api.svc.SaveDraft(ctx.Request().Context(), key, data)
	if err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return ctx.JSON(http.StatusOK, DraftResponse{Key: key, Draft: form})
}

func (api *draftsApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteDraft(ctx.Request().Context(), ctx.Param("key")); err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	return ctx.NoContent(http.StatusNoContent)
}
