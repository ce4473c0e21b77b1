package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/middleware"
)

// Validator adapts validator/v10 to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validationDetails turns validator errors into {"field": "rule"} pairs.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}

// normalizer is implemented by request bodies that clean their fields
// (trimming, case folding) before validation runs.
type normalizer interface {
	normalize()
}

// bindValid binds the body into dst, normalizes it and validates it. On
// failure it writes the 400 response itself and returns false.
func bindValid(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := c.Validate(dst); err != nil {
		if details := validationDetails(err); details != nil {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": details})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// getUserID reads the id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func serverError(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
