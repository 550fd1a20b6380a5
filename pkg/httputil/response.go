package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/pkg/errors"
)

// Envelope wraps every gateway result and every backend response body.
// Code 200 means success; anything else is a failure described by Message.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message"`
}

// OK reports whether the envelope carries a successful result.
func (e Envelope[T]) OK() bool {
	return e.Code == int(errors.CodeOK)
}

// Page is the paginated list shape used by the backend.
type Page[T any] struct {
	List     []T `json:"list"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Success builds a 200 envelope. An empty message becomes "success".
func Success[T any](data T, message string) Envelope[T] {
	if message == "" {
		message = "success"
	}
	return Envelope[T]{Code: int(errors.CodeOK), Data: data, Message: message}
}

// Failure converts err into a failed envelope with the matching code.
func Failure[T any](err error) Envelope[T] {
	return Envelope[T]{Code: errors.CodeOf(err), Message: errors.MessageOf(err)}
}

// Respond turns a (data, err) pair into an envelope.
func Respond[T any](data T, err error, message string) Envelope[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(data, message)
}

// RespondWithSuccess writes a 200 envelope.
func RespondWithSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Success(data, message))
}

// RespondWithError writes a failed envelope. The body code follows the
// error; the transport status mirrors it so plain HTTP tooling still works.
func RespondWithError(c *gin.Context, err error) {
	env := Failure[interface{}](err)
	c.JSON(env.Code, env)
}
