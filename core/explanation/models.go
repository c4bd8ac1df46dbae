package explanation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/content"
	"github.com/trezcool/masomo-studio/core/draft"
)

type (
	BlockInput struct {
		Code        string `json:"code"`
		Explanation string `json:"explanation"`
		Language    string `json:"language" validate:"omitempty,lang"`
	}

	EncodeRequest struct {
		Blocks []BlockInput `json:"blocks" validate:"dive"`
		Format string       `json:"format" validate:"omitempty,blockformat"`
	}

	// DecodeRequest mirrors a stored row: either column may be null.
	DecodeRequest struct {
		Code        *string `json:"code"`
		Explanation *string `json:"explanation"`
	}

	ConvertRequest struct {
		Code        *string `json:"code"`
		Explanation *string `json:"explanation"`
		Format      string  `json:"format" validate:"required,blockformat"`
	}

	DraftInput struct {
		Title    string       `json:"title" validate:"max=255"`
		Kind     content.Kind `json:"kind" validate:"omitempty,oneof=math code"`
		Equation string       `json:"equation"`
		Blocks   []BlockInput `json:"blocks" validate:"dive"`
	}

	DraftKey struct {
		Key string `json:"key" validate:"required,key"`
	}
)

func (r *EncodeRequest) Validate(validate *validator.Validate) error  { return validate.Struct(r) }
func (r *ConvertRequest) Validate(validate *validator.Validate) error { return validate.Struct(r) }
func (in *DraftInput) Validate(validate *validator.Validate) error    { return validate.Struct(in) }
func (k *DraftKey) Validate(validate *validator.Validate) error       { return validate.Struct(k) }

func (r DecodeRequest) columns() content.Columns {
	return columns(r.Code, r.Explanation)
}

func (r ConvertRequest) columns() content.Columns {
	return columns(r.Code, r.Explanation)
}

func columns(code, expl *string) content.Columns {
	var cols content.Columns
	if code != nil {
		cols.Code = *code
	}
	if expl != nil {
		cols.Explanation = *expl
	}
	return cols
}

func toBlocks(in []BlockInput) []content.Block {
	blocks := make([]content.Block, 0, len(in))
	for i, b := range in {
		blocks = append(blocks, content.Block{ID: i, Code: b.Code, Explanation: b.Explanation, Language: b.Language})
	}
	return blocks
}

func (in DraftInput) form(now time.Time) draft.Form {
	kind := in.Kind
	if kind == "" {
		kind = content.KindCode
	}
	return draft.Form{
		Title:     core.CleanString(in.Title),
		Kind:      kind,
		Equation:  in.Equation,
		Blocks:    toBlocks(in.Blocks),
		UpdatedAt: now.UTC(),
	}
}
