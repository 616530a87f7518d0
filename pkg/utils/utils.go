package utils

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

const (
	namespaceSeparator = "."
	emptyTagName       = "-"
	jsonTagName        = "json"
	requiredTagName    = "required"
)

// Round rounds v to the given number of decimal places using the shortest
// decimal of the exact binary value, ties to even.
// NaN and infinities come back unchanged.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	if rounded == 0 {
		// drop the sign of negative zero
		return 0
	}
	return rounded
}

// FormatDecimal renders v as the shortest decimal that reads back as v and
// always keeps a fractional part, so 0 becomes "0.0" and 85.5 stays "85.5".
func FormatDecimal(v float64) string {
	if v == 0 {
		return "0.0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Percent returns covered/total*100, or 0 when total is not positive.
func Percent(covered, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return covered / total * 100
}

// GenerateUUID generates uuid v4
func GenerateUUID() string {
	uuidV4 := uuid.New() // panics on error
	return strings.Map(func(r rune) rune {
		if r == '-' {
			return -1
		}
		return r
	}, uuidV4.String())
}

// ValidateStruct validates config against its `validate` tags.
// source names where the values came from and prefixes the error message.
func ValidateStruct(config interface{}, source string) error {
	validate, err := getValidator()
	if err != nil {
		return err
	}
	return validateStruct(validate, config, source)
}

// configureValidator configure the struct validator
func configureValidator(validate *validator.Validate, trans ut.Translator) {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// nolint: gomnd
		name := strings.SplitN(fld.Tag.Get(jsonTagName), ",", 2)[0]
		if name == emptyTagName || name == "" {
			return fld.Name
		}
		return name
	})

	// nolint: errcheck
	validate.RegisterTranslation(requiredTagName, trans, func(ut ut.Translator) error {
		return ut.Add(requiredTagName, "{0} field is required!", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		i := strings.Index(fe.Namespace(), namespaceSeparator)
		t, _ := ut.T(requiredTagName, fe.Namespace()[i+1:])
		return t
	})
}

func getValidator() (*validator.Validate, error) {
	enObj := en.New()
	uni := ut.New(enObj, enObj)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	configureValidator(validate, trans)
	return validate, nil
}

func validateStruct(validate *validator.Validate, config interface{}, source string) error {
	validateErr := validate.Struct(config)
	if validateErr == nil {
		return nil
	}
	validationErrs, ok := validateErr.(validator.ValidationErrors)
	if !ok {
		return validateErr
	}
	err := new(errs.ErrInvalidConf)
	err.Message = fmt.Sprintf("Invalid values provided for the following fields in %s: \n", source)
	for _, e := range validationErrs {
		err.Fields = append(err.Fields, e.Field())
		err.Values = append(err.Values, e.Value())
	}
	return err
}
