// AngelaMos | 2026
// validation.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

var (
	validate      *validator.Validate
	translator    ut.Translator
	validatorOnce sync.Once
)

// NewValidator returns the shared validator. Field errors are reported by
// JSON name and translated to English.
func NewValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		//nolint:errcheck // built-in english translations always register
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		//nolint:errcheck // tag name is static
		_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			if s, ok := fl.Field().Interface().(string); ok {
				return strings.TrimSpace(s) != ""
			}
			return true
		})
		//nolint:errcheck // tag name is static
		_ = v.RegisterTranslation(
			notBlankTag,
			trans,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " cannot be blank"
			},
		)

		validate = v
		translator = trans
	})

	return validate
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	NewValidator()

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Translate(translator))
	}
	return strings.Join(messages, "; ")
}

// ValidationDetails maps each failing field to its translated message.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	NewValidator()

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Translate(translator)
	}
	return details
}

// DecodeJSON reads a request body into dst, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	if dec.More() {
		return fmt.Errorf("decode body: unexpected trailing data")
	}

	return nil
}
