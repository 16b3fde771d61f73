package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to Echo's Validator interface
// so handlers can call c.Validate on bound request bodies.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator registered on the Echo instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks struct tags and converts failures into a 400 response.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
