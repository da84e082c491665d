package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler renders errors as JSON. Unexpected errors surface the
// raw message with a 500: this is an internal desk tool, not a public API.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	c.Logger().Error(err)

	if jsonErr := c.JSON(code, map[string]interface{}{"message": message}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
