package httpErrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	BadRequest          = "Bad request"
	Unauthorized        = "Unauthorized"
	Forbidden           = "Forbidden"
	NotFound            = "Not Found"
	InternalServerError = "Internal Server Error"
)

var (
	ErrBadRequest          = errors.New(BadRequest)
	ErrUnauthorized        = errors.New(Unauthorized)
	ErrForbidden           = errors.New(Forbidden)
	ErrNotFound            = errors.New(NotFound)
	ErrInternalServerError = errors.New(InternalServerError)
)

// RestErr is the error body every handler replies with.
type RestErr interface {
	Status() int
	Error() string
	Causes() interface{}
}

type RestError struct {
	ErrStatus  int         `json:"status,omitempty"`
	ErrError   string      `json:"error,omitempty"`
	ErrMessage string      `json:"message,omitempty"`
	ErrCauses  interface{} `json:"causes,omitempty"`
}

func (e RestError) Error() string {
	return fmt.Sprintf("status: %d - errors: %s - causes: %v", e.ErrStatus, e.ErrError, e.ErrCauses)
}

func (e RestError) Status() int {
	return e.ErrStatus
}

func (e RestError) Causes() interface{} {
	return e.ErrCauses
}

func NewRestError(status int, err string, message string, causes interface{}) RestErr {
	return RestError{
		ErrStatus:  status,
		ErrError:   err,
		ErrMessage: message,
		ErrCauses:  causes,
	}
}

func NewBadRequestError(message string, causes interface{}) RestErr {
	return NewRestError(http.StatusBadRequest, ErrBadRequest.Error(), message, causes)
}

func NewUnauthorizedError(causes interface{}) RestErr {
	return NewRestError(http.StatusUnauthorized, ErrUnauthorized.Error(), Unauthorized, causes)
}

func NewForbiddenError(causes interface{}) RestErr {
	return NewRestError(http.StatusForbidden, ErrForbidden.Error(), Forbidden, causes)
}

func NewNotFoundError(message string) RestErr {
	return NewRestError(http.StatusNotFound, ErrNotFound.Error(), message, nil)
}

func NewInternalServerError(causes interface{}) RestErr {
	return NewRestError(http.StatusInternalServerError, ErrInternalServerError.Error(), InternalServerError, causes)
}

// ErrorResponse unpacks a RestErr into what echo's c.JSON expects.
func ErrorResponse(err RestErr) (int, interface{}) {
	return err.Status(), err
}
