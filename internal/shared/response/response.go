package response

import (
	"github.com/labstack/echo/v4"
)

type ApiEnvelope struct {
	Ok    bool `json:"ok"`
	Data  any  `json:"data,omitempty"`
	Error any  `json:"error,omitempty"`
}

func Success(c echo.Context, status int, data any) error {
	return c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
	})
}

func Error(c echo.Context, status int, errorCode string, message string, details any) error {
	return c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: map[string]any{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}
