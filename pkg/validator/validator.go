package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

const maxSKULength = 50

func init() {
	// SKUs end up in URL paths: no whitespace, no slashes, at most 50 characters.
	validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		sku := fl.Field().String()
		if sku == "" || len(sku) > maxSKULength {
			return false
		}
		for _, r := range sku {
			if unicode.IsSpace(r) || r == '/' || r == '\\' || !unicode.IsPrint(r) {
				return false
			}
		}
		return true
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "struct"}}
		}
		for _, err := range validationErrs {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Message renders validation failures in one line, e.g.
// "Field 'AdjustmentRequest.SKU' failed on tag 'required'".
func Message(errs []*ErrorResponse) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("Field '%s' failed on tag '%s'", e.FailedField, e.Tag))
	}
	return strings.Join(parts, "; ")
}
