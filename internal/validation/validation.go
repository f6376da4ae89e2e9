// Package validation holds the form rules for application input. The same
// rules run at the form boundary (cache, CLI, HTTP) and inside the gateway.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/khrees2412/jobtracker/pkg/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// NormalizeInput trims surrounding whitespace from the free-text fields
func NormalizeInput(input models.ApplicationInput) models.ApplicationInput {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.Role = strings.TrimSpace(input.Role)
	input.ApplicationLink = strings.TrimSpace(input.ApplicationLink)
	input.DateApplied = strings.TrimSpace(input.DateApplied)
	input.Notes = strings.TrimSpace(input.Notes)
	input.LocationType = models.LocationType(strings.ToLower(strings.TrimSpace(string(input.LocationType))))
	input.Status = models.Status(strings.ToLower(strings.TrimSpace(string(input.Status))))
	return input
}

// ValidateInput normalizes input and checks every form rule.
// The first violation is returned as a *models.ValidationError.
func ValidateInput(input models.ApplicationInput) (models.ApplicationInput, error) {
	input = NormalizeInput(input)
	if err := instance().Struct(input); err != nil {
		return models.ApplicationInput{}, translate("", err)
	}
	return input, nil
}

// NormalizePatch trims the supplied fields of a patch
func NormalizePatch(patch models.ApplicationPatch) models.ApplicationPatch {
	patch.CompanyName = trimmed(patch.CompanyName)
	patch.Role = trimmed(patch.Role)
	patch.ApplicationLink = trimmed(patch.ApplicationLink)
	patch.DateApplied = trimmed(patch.DateApplied)
	patch.Notes = trimmed(patch.Notes)
	if patch.LocationType != nil {
		l := models.LocationType(strings.ToLower(strings.TrimSpace(string(*patch.LocationType))))
		patch.LocationType = &l
	}
	if patch.Status != nil {
		s := models.Status(strings.ToLower(strings.TrimSpace(string(*patch.Status))))
		patch.Status = &s
	}
	return patch
}

// ValidatePatch checks only the fields a patch supplies, using the same
// rules as ValidateInput. An empty patch is rejected.
func ValidatePatch(patch models.ApplicationPatch) (models.ApplicationPatch, error) {
	patch = NormalizePatch(patch)
	if patch.Empty() {
		return models.ApplicationPatch{}, &models.ValidationError{Message: "no fields to update"}
	}

	checks := []struct {
		field string
		value *string
		tag   string
	}{
		{"company_name", patch.CompanyName, "required,max=200"},
		{"role", patch.Role, "required,max=200"},
		{"application_link", patch.ApplicationLink, "omitempty,url,max=2048"},
		{"date_applied", patch.DateApplied, "required,datetime=2006-01-02"},
		{"notes", patch.Notes, "max=5000"},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := instance().Var(*c.value, c.tag); err != nil {
			return models.ApplicationPatch{}, translate(c.field, err)
		}
	}

	if patch.LocationType != nil && !patch.LocationType.Valid() {
		return models.ApplicationPatch{}, &models.ValidationError{
			Field:   "location_type",
			Message: "must be one of: remote onsite hybrid",
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.ApplicationPatch{}, &models.ValidationError{
			Field:   "status",
			Message: "must be one of: applied interview offer rejected",
		}
	}

	return patch, nil
}

// ParseStatus validates a user-supplied status string
func ParseStatus(raw string) (models.Status, error) {
	status := models.Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", &models.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of: %s", joinStatuses()),
		}
	}
	return status, nil
}

func joinStatuses() string {
	parts := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func translate(field string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &models.ValidationError{Field: field, Message: err.Error()}
	}

	fe := fieldErrs[0]
	if field == "" {
		field = fe.Field()
	}
	return &models.ValidationError{Field: field, Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
