package user

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	domain "mongo-user-api/internal/domain/user"
	apperrors "mongo-user-api/pkg/errors"
)

// Field constraints for the user entity.
const (
	maxNameLength = 100
	maxCityLength = 100
	minAge        = 0
	maxAge        = 150
)

// emailPattern restricts local part and domain labels to word characters,
// dots and hyphens, with a mandatory TLD.
var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// validateName checks the name constraint shared by create and update.
func validateName(name string) *apperrors.FieldError {
	if name == "" {
		return &apperrors.FieldError{Field: "name", Reason: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return &apperrors.FieldError{Field: "name", Reason: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	return nil
}

func validateEmail(email string) *apperrors.FieldError {
	if email == "" {
		return &apperrors.FieldError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &apperrors.FieldError{Field: "email", Reason: "email must be a valid email address"}
	}
	return nil
}

func validateAge(age int) *apperrors.FieldError {
	if age < minAge || age > maxAge {
		return &apperrors.FieldError{Field: "age", Reason: fmt.Sprintf("age must be between %d and %d", minAge, maxAge)}
	}
	return nil
}

func validateCity(city string) *apperrors.FieldError {
	if utf8.RuneCountInString(city) > maxCityLength {
		return &apperrors.FieldError{Field: "city", Reason: fmt.Sprintf("city must be at most %d characters", maxCityLength)}
	}
	return nil
}

// validateCreate checks a create payload against the entity constraints.
// Violations are aggregated so the caller sees every problem in one
// response rather than the first failure only.
func validateCreate(in CreateUserRequest) error {
	var fields []apperrors.FieldError

	if fe := validateName(in.Name); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := validateEmail(in.Email); fe != nil {
		fields = append(fields, *fe)
	}
	if in.Age == nil {
		fields = append(fields, apperrors.FieldError{Field: "age", Reason: "age is required"})
	} else if fe := validateAge(*in.Age); fe != nil {
		fields = append(fields, *fe)
	}
	if in.City != nil {
		if fe := validateCity(*in.City); fe != nil {
			fields = append(fields, *fe)
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// validateUpdate checks the supplied fields of an update payload and builds
// the patch to apply. A payload supplying zero recognized fields is a
// client error, not a no-op.
func validateUpdate(in UpdateUserRequest) (domain.Patch, error) {
	patch := domain.Patch{
		Name:    in.Name,
		Email:   in.Email,
		Age:     in.Age,
		City:    in.City,
		CitySet: in.CitySet,
	}

	if patch.IsEmpty() {
		return domain.Patch{}, apperrors.NewEmptyUpdateError()
	}

	var fields []apperrors.FieldError

	if in.Name != nil {
		if fe := validateName(*in.Name); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if in.Email != nil {
		if fe := validateEmail(*in.Email); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if in.Age != nil {
		if fe := validateAge(*in.Age); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if in.CitySet && in.City != nil {
		if fe := validateCity(*in.City); fe != nil {
			fields = append(fields, *fe)
		}
	}

	if len(fields) > 0 {
		return domain.Patch{}, apperrors.NewValidationError(fields...)
	}
	return patch, nil
}
