package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cannashop/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank is registered by hand because it lives outside the baked-in set.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidateProduct checks the general product schema and returns one message per violation.
func (s *ProductService) ValidateProduct(candidate models.ProductInput) []string {
	err := s.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, e := range verrs {
		problems = append(problems, describe(e))
	}
	return problems
}

func describe(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, e.Tag())
	}
}

type specKind int

const (
	specText specKind = iota
	specNumber
)

type specRule struct {
	field string
	kind  specKind
	min   float64
	// exclusive makes min a strict lower bound.
	exclusive bool
}

var categorySpecRules = map[models.Category][]specRule{
	models.CategoryFlowers: {
		{field: "strain", kind: specText},
		{field: "thc", kind: specNumber},
		{field: "cbd", kind: specNumber},
		{field: "weight", kind: specNumber, exclusive: true},
	},
	models.CategoryExtracts: {
		{field: "thc", kind: specNumber},
		{field: "cbd", kind: specNumber},
		{field: "quantity", kind: specNumber, exclusive: true},
	},
	models.CategoryEdibles: {
		{field: "thcMg", kind: specNumber},
		{field: "units", kind: specNumber, exclusive: true},
	},
	models.CategoryAccessories: nil,
}

// ValidateCategorySpecs applies the per-category spec rules. Unknown categories add no constraint.
func (s *ProductService) ValidateCategorySpecs(category string, specs map[string]any) []string {
	return validateCategorySpecs(category, specs)
}

func validateCategorySpecs(category string, specs map[string]any) []string {
	rules := categorySpecRules[models.Category(category)]
	var problems []string
	for _, r := range rules {
		name := "specs." + r.field
		raw, ok := specs[r.field]
		if !ok || raw == nil {
			problems = append(problems, name+" is required for "+category)
			continue
		}
		switch r.kind {
		case specText:
			text, isText := raw.(string)
			if !isText || strings.TrimSpace(text) == "" {
				problems = append(problems, name+" must be non-empty text")
			}
		case specNumber:
			n, isNumber := toFloat(raw)
			switch {
			case !isNumber:
				problems = append(problems, name+" must be a number")
			case r.exclusive && n <= r.min:
				problems = append(problems, fmt.Sprintf("%s must be greater than %g", name, r.min))
			case !r.exclusive && n < r.min:
				problems = append(problems, fmt.Sprintf("%s must be greater than or equal to %g", name, r.min))
			}
		}
	}
	return problems
}

// toFloat accepts the numeric types produced by the JSON and BSON decoders.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
