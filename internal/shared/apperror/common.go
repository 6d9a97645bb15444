package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrDataLoading = New(
		CodeServiceUnavailable,
		"Payroll data is still loading",
		http.StatusServiceUnavailable,
	)
)

func InvalidInput(err error, message string) *AppError {
	return Wrap(err, CodeInvalidInput, message, http.StatusBadRequest)
}

func Unavailable(err error) *AppError {
	return Wrap(err, CodeServiceUnavailable, "Payroll data failed to load", http.StatusServiceUnavailable)
}
