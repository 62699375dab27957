package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Vasu3050/schoolsite/core"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// PagedData wraps a result list with its pagination block.
type PagedData struct {
	Items      interface{}     `json:"items"`
	Pagination core.Pagination `json:"pagination"`
}

func respond(ctx echo.Context, code int, data interface{}, message string) error {
	return ctx.JSON(code, Response{StatusCode: code, Data: data, Message: message})
}
