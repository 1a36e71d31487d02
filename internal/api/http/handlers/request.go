package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationFailure(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequest(err.Error())
	}
	fields := make([]map[string]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, map[string]string{
			"field":   fe.Field(),
			"message": fe.Tag(),
		})
	}
	return apperrors.NewValidationError("validation error", map[string]any{"fields": fields})
}

func principal(c *fiber.Ctx) (domain.SessionClaims, error) {
	claims, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.SessionClaims{}, apperrors.NewUnauthorized("authentication required")
	}
	return claims, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
