package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	catalog := map[string]func(string) bool{
		"subject":   models.IsSubject,
		"class":     models.IsClass,
		"timeslot":  models.IsTimeSlot,
		"duration":  models.IsDuration,
		"emailaddr": emailPattern.MatchString,
		"phone":     phonePattern.MatchString,
	}
	for tag, fn := range catalog {
		fn := fn
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
	return v
}

// messages maps "field" or "field.tag" to the text shown to the user.
type messages map[string]string

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", strings.ReplaceAll(field, "_", " "))
}

// check validates v and converts failures into an invalid-input error
// carrying one message per field.
func check(v interface{}, msgs messages) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.KindInvalidInput, "invalid input", err)
	}
	fields := make(map[string]string, len(verrs))
	first := ""
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := fields[field]; seen {
			continue
		}
		msg := msgs.lookup(field, fe.Tag())
		fields[field] = msg
		if first == "" {
			first = msg
		}
	}
	return apperrors.Invalid(first, fields)
}
