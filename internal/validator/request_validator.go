package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"charforge/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// RequestValidator はechoの Validator。リクエストDTOのタグを検証する。
// 失敗はVALIDATIONのAppErrorで返す。
type RequestValidator struct {
	v *playground.Validate
}

func New() *RequestValidator {
	v := playground.New()
	// JSONのフィールド名でエラーを返す
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("hexcolor6", func(fl playground.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl playground.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return usecase.Validation(describe(verrs[0]))
	}
	return usecase.Validation("invalid request")
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hexcolor6":
		return fmt.Sprintf("%s must be #RRGGBB", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
