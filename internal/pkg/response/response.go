package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/pkg/errs"
)

// messageBody is the only error envelope the API emits.
type messageBody struct {
	Message string `json:"message"`
}

// OK sends a 200 response with data as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message sends a {message} body with the given status.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, messageBody{Message: message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, messageBody{Message: message})
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, messageBody{Message: message})
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, messageBody{Message: message})
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, messageBody{Message: message})
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, messageBody{Message: errs.Message(err)})
}

// Unavailable sends a 503 error response.
func Unavailable(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, messageBody{Message: message})
}

// Error maps a classified error to its status code.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	msg := errs.Message(err)
	switch errs.KindOf(err) {
	case errs.KindInvalid:
		BadRequest(c, msg)
	case errs.KindNotFound:
		NotFound(c, msg)
	case errs.KindConflict:
		Conflict(c, msg)
	case errs.KindUnavailable:
		if msg == "" || msg == "context deadline exceeded" || msg == "context canceled" {
			msg = "la solicitud excedió el tiempo de espera"
		}
		Unavailable(c, msg)
	default:
		InternalError(c, err)
	}
}

// StatusOf returns the status code Error would write for err.
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindInvalid:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
