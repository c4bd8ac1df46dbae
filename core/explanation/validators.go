package explanation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/content"
)

var (
	blockFormatTag  = "blockformat"
	blockFormatText = "{0} must be one of legacy, json, msgpack, cbor or protobuf"

	langTag  = "lang"
	langText = "{0} is not a supported language"
)

// InitValidators registers the explanation validation tags; call it after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(blockFormatTag, blockFormatValidation)
	core.RegisterCustomTranslation(validate, translator, blockFormatTag, blockFormatText)

	_ = validate.RegisterValidation(langTag, langValidation)
	core.RegisterCustomTranslation(validate, translator, langTag, langText)
}

func blockFormatValidation(fl validator.FieldLevel) bool {
	_, err := content.ParseFormat(fl.Field().String())
	return err == nil
}

func langValidation(fl validator.FieldLevel) bool {
	return content.IsLanguage(fl.Field().String())
}
