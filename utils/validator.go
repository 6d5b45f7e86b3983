package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("role", validateRole)
	v.RegisterValidation("unit_type", validateUnitType)
	v.RegisterValidation("unit_status", validateUnitStatus)
	v.RegisterValidation("emergency_type", validateEmergencyType)
	v.RegisterValidation("emergency_status", validateEmergencyStatus)
	v.RegisterValidation("severity", validateSeverity)
	v.RegisterValidation("message_type", validateMessageType)
	v.RegisterValidation("message_priority", validateMessagePriority)
	v.RegisterValidation("assignment_role", validateAssignmentRole)

	return &ValidationService{
		validator: v,
	}
}

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: vs.getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "role":
		return "Role must be command or node"
	case "unit_type":
		return "Invalid unit type"
	case "unit_status":
		return "Invalid unit status"
	case "emergency_type":
		return "Invalid emergency type"
	case "emergency_status":
		return "Invalid emergency status"
	case "severity":
		return "Invalid severity"
	case "message_type":
		return "Invalid message type"
	case "message_priority":
		return "Invalid message priority"
	case "assignment_role":
		return "Role must be primary or support"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// MissingFields flattens validation errors into the field names the
// error taxonomy reports back to the caller.
func MissingFields(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

// Custom validation functions. The enum checks live on the models so
// the same sets back both validation tags and service-level guards.
func validateRole(fl validator.FieldLevel) bool {
	return fl.Field().String() == "command" || fl.Field().String() == "node"
}

func validateUnitType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ambulance", "fire", "police", "rescue":
		return true
	}
	return false
}

func validateUnitStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "available", "busy", "offline":
		return true
	}
	return false
}

func validateEmergencyType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "medical", "fire", "crime", "accident", "disaster":
		return true
	}
	return false
}

func validateEmergencyStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "assigned", "in-progress", "resolved", "cancelled":
		return true
	}
	return false
}

func validateSeverity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high", "critical":
		return true
	}
	return false
}

func validateMessageType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "text", "alert", "assignment", "system":
		return true
	}
	return false
}

func validateMessagePriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "normal", "high", "urgent":
		return true
	}
	return false
}

func validateAssignmentRole(fl validator.FieldLevel) bool {
	return fl.Field().String() == "primary" || fl.Field().String() == "support"
}
