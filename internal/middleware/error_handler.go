package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// CustomErrorHandler maps service errors to JSON responses. Validation
// failures carry the specific violated rule in the message; unexpected
// errors are logged and reported generically.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrStudentNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrOverpayment),
		errors.Is(err, services.ErrInvalidDiscount),
		errors.Is(err, services.ErrInvalidStructure),
		errors.Is(err, services.ErrFractionalBalance):
		code = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, services.ErrSessionSettled):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvoiceConflict),
		errors.Is(err, services.ErrGenerationRunning):
		code = http.StatusConflict
		message = err.Error()
	}

	c.Logger().Error(err)

	if jsonErr := c.JSON(code, map[string]interface{}{"error": message}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
