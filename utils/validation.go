package utils

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s()-]+$`)

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
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("answer", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.String {
			return strings.TrimSpace(f.String()) != ""
		}
		return f.IsValid()
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldMessager supplies per-field messages keyed by JSON path
// (e.g. "notifications.email").
type FieldMessager interface {
	FieldMessages() map[string]string
}

// Normalizer is implemented by inputs that tidy their own fields, such as
// trimming whitespace, before the validate tags are checked.
type Normalizer interface {
	Normalize()
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks s against its validate tags. Failures come back as
// ValidationErrors, one entry per field, in declaration order.
// A Normalizer is normalized first.
func Validate(s any) error {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := fieldMessages(s)
	out := make(ValidationErrors, 0, len(verrs))
	seen := map[string]bool{}
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if seen[path] {
			continue
		}
		seen[path] = true
		msg, ok := messages[path]
		if !ok {
			msg = "Invalid value"
		}
		out = append(out, FieldError{Field: path, Message: msg, Value: fe.Value()})
	}
	return out
}

func fieldMessages(s any) map[string]string {
	if m, ok := s.(FieldMessager); ok {
		return m.FieldMessages()
	}
	return nil
}

// TypeErrors reports a JSON type mismatch met while decoding into s as a
// field error. It returns false for any other decode failure.
func TypeErrors(s any, err error) (ValidationErrors, bool) {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) || te.Field == "" {
		return nil, false
	}
	msg, ok := fieldMessages(s)[te.Field]
	if !ok {
		msg = "Invalid value"
	}
	return ValidationErrors{{Field: te.Field, Message: msg}}, true
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
