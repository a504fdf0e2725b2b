package utils

import (
	"errors"
	"fmt"
)

// CustomError is a user-facing failure carrying the process exit code.
type CustomError struct {
	Code    int
	Message string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// ExitCode maps err to a process exit code. Nil is 0, unknown errors are 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 1
}
