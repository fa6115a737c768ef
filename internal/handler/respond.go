package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// Validator plugs go-playground/validator into echo. Failures come back as
// apperr input errors naming the offending JSON field.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator that reports fields by their json name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Input("invalid request body")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Input("%s is required", fe.Field())
	case "min":
		return apperr.Input("%s must have at least %s item(s)", fe.Field(), fe.Param())
	case "gt":
		return apperr.Input("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min_value":
		return apperr.Input("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return apperr.Input("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return apperr.Input("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return apperr.Input("%s is invalid", fe.Field())
}

// bind decodes the request body into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Input("invalid request body")
	}
	return c.Validate(dst)
}

// parseID checks that raw is a UUID and returns its canonical form.
func parseID(raw, what string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperr.Input("invalid %s id", what)
	}
	return id.String(), nil
}

// actingAdmin returns the token's email when the request is authenticated,
// otherwise the trimmed, lower-cased claimed value.
func actingAdmin(c echo.Context, claimed string) string {
	if e := middleware.ActorEmail(c); e != "" {
		return e
	}
	return strings.ToLower(strings.TrimSpace(claimed))
}

func statusOf(err error, conflict int) int {
	switch {
	case errors.Is(err, apperr.ErrInput), errors.Is(err, apperr.ErrPolicy):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return conflict
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": msg}, adding "seats" for seat conflicts.
func fail(c echo.Context, err error) error {
	return failWith(c, err, http.StatusConflict)
}

// failWith is fail with a custom status for conflicts.
func failWith(c echo.Context, err error, conflict int) error {
	body := echo.Map{"error": apperr.Message(err)}
	if seats := apperr.ConflictSeats(err); len(seats) > 0 {
		body["seats"] = seats
	}
	return c.JSON(statusOf(err, conflict), body)
}
