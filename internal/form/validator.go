// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form checks request payloads against their field constraints
// before anything is sent to the backend.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
)

// Validator wraps go-playground/validator with the console's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterStructValidation(periodOrder,
		model.CreateProductFeedbackRequest{},
		model.GenerateFeedbackSummaryRequest{},
	)

	return &Validator{validate: v}
}

// Validate checks s. It returns nil or an *apiclient.ValidationError listing
// every failing field in declaration order.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %T: %w", s, err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return &apiclient.ValidationError{Fields: fields}
}

// fieldPath drops the struct name from the namespace:
// "CreateRecipeRequest.cookingSteps[0].description" becomes
// "cookingSteps[0].description".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "gtefield":
		return "must not be before " + fe.Param()
	}
	return "is invalid"
}

// periodOrder rejects a period whose end precedes its start. Malformed dates
// are left to the datetime tag.
func periodOrder(sl validator.StructLevel) {
	var start, end string
	switch r := sl.Current().Interface().(type) {
	case model.CreateProductFeedbackRequest:
		start, end = r.PeriodStart, r.PeriodEnd
	case model.GenerateFeedbackSummaryRequest:
		start, end = r.PeriodStart, r.PeriodEnd
	default:
		return
	}
	from, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return
	}
	to, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return
	}
	if to.Before(from) {
		sl.ReportError(end, "periodEnd", "PeriodEnd", "gtefield", "periodStart")
	}
}
