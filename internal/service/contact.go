package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolio-api/internal/models"
	"portfolio-api/internal/repository"
)

// ContactInput is the contact-form payload. Subject is optional.
type ContactInput struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Subject *string `json:"subject"`
	Message string  `json:"message" validate:"required"`
}

// FieldError names the offending field of an invalid submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries structured per-field errors; it never becomes a
// generic 500.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "service: invalid contact submission: " + strings.Join(names, ", ")
}

// ContactService validates and stores contact-form submissions.
type ContactService struct {
	store    *repository.ContactStore
	validate *validator.Validate
}

// NewContactService creates the service over the given store.
func NewContactService(store *repository.ContactStore) *ContactService {
	return &ContactService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Submit validates the payload and persists it, returning the stored row.
func (s *ContactService) Submit(in ContactInput) (models.ContactSubmission, error) {
	if err := s.validate.Struct(in); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return models.ContactSubmission{}, err
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: messageFor(fe),
			})
		}
		return models.ContactSubmission{}, &ValidationError{Fields: fields}
	}

	return s.store.Create(in.Name, in.Email, in.Subject, in.Message), nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
