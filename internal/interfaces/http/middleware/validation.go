package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// skuPattern reports whether a value is usable as a SKU: non-blank, no
// whitespace, at most 64 characters.
func skuPattern(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || len(value) > 64 {
		return false
	}
	return !strings.ContainsAny(value, " \t\n")
}

// SetupValidator configures the binding validator: JSON tag names in error
// messages and the custom sku tag.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("sku", skuPattern)
}
