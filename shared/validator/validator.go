package validator

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"hotel/shared/failure"

	val "github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var (
	validate *val.Validate
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
)

func registerNotBlankValidation(field val.FieldLevel) bool {
	if str, ok := field.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}

	return !field.Field().IsZero()
}

// jsonFieldName reports fields by their wire name so messages match what the client sent.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err := validate.RegisterValidation("notblank", registerNotBlankValidation); err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	if err := Decode(r, data); err != nil {
		return err
	}

	return ValidateStruct(data)
}

// Decode reads a JSON body into data without validating it.
func Decode[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

// FailedFields lists the fields of a failed ValidateStruct call in declaration order.
func FailedFields(data any) []string {
	var valErrors val.ValidationErrors

	if err := validate.Struct(data); err == nil || !asValidationErrors(err, &valErrors) {
		return nil
	}

	fields := make([]string, 0, len(valErrors))
	for _, valErr := range valErrors {
		fields = append(fields, valErr.Field())
	}

	return fields
}
