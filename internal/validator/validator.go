// Package validator checks record structs for missing required fields
// before they reach the store.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	apperrors "counselor/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// engine returns the shared validator with custom rules registered.
func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		_ = validate.RegisterValidation("required_date", validateRequiredDate)
	})
	return validate
}

// Struct validates v and returns an ErrRequiredField AppError naming the
// first missing field, or nil.
func Struct(v interface{}) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.Wrap(
		apperrors.WithMessage(apperrors.ErrRequiredField, strings.Join(fields, ", ")+" is required"),
		err,
	)
}

// jsonFieldName reports fields by their JSON name so messages match the
// column naming callers see.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateRequiredDate(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case datatypes.Date:
		return !time.Time(v).IsZero()
	case time.Time:
		return !v.IsZero()
	}
	return false
}
