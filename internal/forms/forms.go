// Package forms turns submitted key/value input into validated values or a
// per field error set. Whole-form messages are stored under appErrors.FormField.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"

	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
)

const trimMinTag = "trimmin"

var (
	validate   *validator.Validate
	translator ut.Translator
)

// Field specific messages, keyed by "<tag>:<field>". Tags without an entry
// fall back to the generic Russian translations.
var messages = map[string]string{
	"trimmin:name":       "Имя должно содержать минимум 2 символа",
	"trimmin:first_name": "Имя должно содержать минимум 2 символа",
	"trimmin:last_name":  "Фамилия должна содержать минимум 2 символа",
	"trimmin:message":    "Текст сообщения должен быть не короче 10 символов",
	"min:password":       "Пароль должен быть не короче 8 символов",
	"required":           "Обязательное поле.",
	"email":              "Введите правильный адрес электронной почты.",
}

func init() {
	var err error
	if validate, translator, err = newValidator(); err != nil {
		panic(fmt.Sprintf("forms: configure validator: %v", err))
	}
}

// newValidator builds the validator with Russian messages and the custom tags.
func newValidator() (*validator.Validate, ut.Translator, error) {
	v := validator.New()

	locale := ru.New()
	uni := ut.New(locale, locale)
	trans, found := uni.GetTranslator("ru")
	if !found {
		return nil, nil, errors.New("ru translator not found")
	}
	if err := ru_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("register ru translations: %w", err)
	}

	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation(trimMinTag, trimmedMin); err != nil {
		return nil, nil, fmt.Errorf("register %s: %w", trimMinTag, err)
	}
	if err := v.RegisterTranslation(trimMinTag, trans,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fmt.Sprintf("Минимум %s символа", fe.Param())
		}); err != nil {
		return nil, nil, fmt.Errorf("translate %s: %w", trimMinTag, err)
	}
	return v, trans, nil
}

// Validator exposes the configured validator so services share one instance.
func Validator() *validator.Validate {
	return validate
}

// fieldName reports errors under the submitted key rather than the Go field name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// trimmedMin checks the rune length of the value after trimming whitespace.
func trimmedMin(fl validator.FieldLevel) bool {
	var n int
	if _, err := fmt.Sscanf(fl.Param(), "%d", &n); err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// Errors collects messages per field.
type Errors map[string][]string

// Add appends a message to field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// AddForm appends a whole-form message.
func (e Errors) AddForm(message string) {
	e.Add(appErrors.FormField, message)
}

// Has reports whether field already failed.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Err returns nil when no message was collected and a VALIDATION_ERROR otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return appErrors.Validation(e)
}

// check runs the struct tags and returns the collected field errors.
func check(form interface{}) (Errors, error) {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate form: %w", err)
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), translate(fe))
	}
	return errs, nil
}

func translate(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()+":"+fe.Field()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	return fe.Translate(translator)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
