package domain

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ServiceType determines the booking branch and the calculator path
type ServiceType string

const (
	ServiceTypeTimeBased    ServiceType = "TIME_BASED"
	ServiceTypeProjectBased ServiceType = "PROJECT_BASED"
)

// PricingType affects the displayed amount only
type PricingType string

const (
	PricingFixed  PricingType = "FIXED"
	PricingHourly PricingType = "HOURLY"
)

// DeliveryTimeUnit unit of DeliveryTimeValue
type DeliveryTimeUnit string

const (
	DeliveryMinutes DeliveryTimeUnit = "MINUTES"
	DeliveryHours   DeliveryTimeUnit = "HOURS"
	DeliveryDays    DeliveryTimeUnit = "DAYS"
	DeliveryWeeks   DeliveryTimeUnit = "WEEKS"
	DeliveryMonths  DeliveryTimeUnit = "MONTHS"
)

// ServiceDescriptor is a bookable offering of a professional
type ServiceDescriptor struct {
	ID                uuid.UUID        `json:"id"`
	ProfessionalID    uuid.UUID        `json:"professionalId"`
	Title             string           `json:"title" validate:"min=3,max=100"`
	Description       string           `json:"description" validate:"min=20,max=1000"`
	ServiceType       ServiceType      `json:"serviceType" validate:"oneof=TIME_BASED PROJECT_BASED"`
	PricingType       PricingType      `json:"pricingType" validate:"oneof=FIXED HOURLY"`
	DeliveryTimeValue int              `json:"deliveryTimeValue" validate:"min=1"`
	DeliveryTimeUnit  DeliveryTimeUnit `json:"deliveryTimeUnit" validate:"oneof=MINUTES HOURS DAYS WEEKS MONTHS"`
	PriceInCents      int64            `json:"priceInCents" validate:"min=500"`
	IsActive          bool             `json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// IsTimeBased returns true when clients pick a slot
func (s *ServiceDescriptor) IsTimeBased() bool {
	return s.ServiceType == ServiceTypeTimeBased
}

// Validate checks every field rule and reports all violations at once
func (s *ServiceDescriptor) Validate() error {
	var violations []Violation

	if s.ProfessionalID == uuid.Nil {
		violations = append(violations, Violation{Field: "professionalId", Message: "is required"})
	}
	violations = append(violations, ValidateStruct(s)...)

	if len(violations) > 0 {
		return NewValidationError(violations...)
	}
	return nil
}

// Validate shared struct validator, field names reported by json tag
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs struct tags through Validate and converts failures to violations
func ValidateStruct(s interface{}) []Violation {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Field: "-", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, Violation{Field: fe.Field(), Message: describe(fe)})
	}
	return violations
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed rule %q", fe.Tag())
}
