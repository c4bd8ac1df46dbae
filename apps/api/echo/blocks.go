package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core/content"
	"github.com/trezcool/masomo-studio/core/explanation"
)

type (
	ColumnsResponse struct {
		Code        string         `json:"code"`
		Explanation string         `json:"explanation"`
		Format      content.Format `json:"format"`
	}

	LanguageRequest struct {
		Code string `json:"code"`
	}

	LanguageResponse struct {
		Language string `json:"language"`
	}
)

type blocksApi struct {
	svc *explanation.Service
}

func registerBlocksAPI(g *echo.Group, svc *explanation.Service) {
	api := blocksApi{svc: svc}

	bg := g.Group("/blocks")
	bg.POST("/encode", api.encode)
	bg.POST("/decode", api.decode)
	bg.POST("/convert", api.convert)
	bg.POST("/language", api.language)

	g.GET("/languages", api.languages)
}

// Handlers

func (api *blocksApi) encode(ctx echo.Context) error {
	var data explanation.EncodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EncodeRequest")
	}

	cols, f, err := api.svc.Encode(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "encoding blocks")
	}

	return ctx.JSON(http.StatusOK, ColumnsResponse{Code: cols.Code, Explanation: cols.Explanation, Format: f})
}

func (api *blocksApi) decode(ctx echo.Context) error {
	var data explanation.DecodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecodeRequest")
	}

	blocks, err := api.svc.Decode(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "decoding blocks")
	}

	return ctx.JSON(http.StatusOK, blocks)
}

func (api *blocksApi) convert(ctx echo.Context) error {
	var data explanation.ConvertRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConvertRequest")
	}

	cols, err := api.svc.Convert(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "converting blocks")
	}

	return ctx.JSON(http.StatusOK, ColumnsResponse{Code: cols.Code, Explanation: cols.Explanation, Format: content.Detect(cols)})
}

func (api *blocksApi) language(ctx echo.Context) error {
	var data LanguageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LanguageRequest")
	}
	return ctx.JSON(http.StatusOK, LanguageResponse{Language: api.svc.InferLanguage(data.Code)})
}

func (api *blocksApi) languages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, content.Languages())
}
