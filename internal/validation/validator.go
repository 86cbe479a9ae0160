// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package validation checks request structs with go-playground/validator.
// Messages name fields by their JSON key, so a missing movieId reads
// "movieId is required".
//
//	type createReviewRequest struct {
//	    MovieID string `json:"movieId" validate:"required"`
//	    Rating  int    `json:"rating" validate:"rating"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidation(w, verr.ToAPIError())
//	    return
//	}
//
// Besides the built-in tags, "rating" accepts 0 to 5 and "username"
// rejects whitespace and control characters.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/reviews"
)

// validate is safe for concurrent use once built.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"rating":   ratingTag,
		"username": usernameTag,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func ratingTag(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.CanInt() && reviews.ValidRating(int(f.Int()))
}

func usernameTag(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

// FieldError is one failed rule. Values are never included, since the
// field may be a password.
type FieldError struct {
	Field   string // JSON name
	Tag     string
	Param   string // e.g. "8" for min=8
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Errors lists every failed rule of one struct, in field order.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError builds the VALIDATION_ERROR body. A single failure reports
// its field and tag; several are listed under "fields".
func (es Errors) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: models.ErrCodeValidation, Message: "Validation failed"}
	switch len(es) {
	case 0:
	case 1:
		apiErr.Message = es[0].Message
		apiErr.Details = map[string]any{"field": es[0].Field, "tag": es[0].Tag}
	default:
		fields := make([]map[string]any, len(es))
		for i, e := range es {
			fields[i] = map[string]any{"field": e.Field, "tag": e.Tag, "message": e.Message}
		}
		apiErr.Message = es.Error()
		apiErr.Details = map[string]any{"fields": fields}
	}
	return apiErr
}

// ValidateStruct returns nil when s passes every rule.
func ValidateStruct(s any) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}
	out := make(Errors, len(fes))
	for i, fe := range fes {
		out[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param(), Message: message(fe)}
	}
	return out
}

// messages holds the wording per tag; %[1]s is the field, %[2]s the param.
var messages = map[string]string{
	"required": "%[1]s is required",
	"email":    "%[1]s must be a valid email address",
	"url":      "%[1]s must be a valid URL",
	"numeric":  "%[1]s must be a number",
	"rating":   "%[1]s must be between 0 and 5",
	"username": "%[1]s must not contain spaces",
	"oneof":    "%[1]s must be one of: %[2]s",
	"gte":      "%[1]s must be greater than or equal to %[2]s",
	"lte":      "%[1]s must be less than or equal to %[2]s",
	"eqfield":  "%[1]s must match %[2]s",
}

func message(fe validator.FieldError) string {
	param := fe.Param()
	tag := fe.Tag()
	switch tag {
	case "eqfield":
		// The param is the Go field name; report its JSON form.
		param = lowerFirst(param)
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", fe.Field(), bound, param)
		}
		return fmt.Sprintf("%s must be %s %s", fe.Field(), bound, param)
	}
	if tmpl, ok := messages[tag]; ok {
		if strings.Contains(tmpl, "%[2]s") {
			return fmt.Sprintf(tmpl, fe.Field(), param)
		}
		return fmt.Sprintf(tmpl, fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), tag)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
