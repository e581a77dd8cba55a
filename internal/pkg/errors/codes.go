package errors

import "net/http"

var (
	ErrIndicatorNotFound = New(
		"INDICATOR_NOT_FOUND",
		"Indicator not found",
		http.StatusNotFound,
	)

	ErrInvalidIndicatorID = New(
		"INVALID_INDICATOR_ID",
		"Invalid indicator ID",
		http.StatusBadRequest,
	)

	ErrInvalidYears = New(
		"INVALID_YEARS",
		"Invalid years parameter",
		http.StatusBadRequest,
	)

	ErrInvalidGender = New(
		"INVALID_GENDER",
		"Invalid gender value",
		http.StatusBadRequest,
	)

	ErrInvalidLanguage = New(
		"INVALID_LANGUAGE",
		"Unsupported language",
		http.StatusBadRequest,
	)

	ErrMetadataUnavailable = New(
		"METADATA_UNAVAILABLE",
		"Indicator metadata is not available",
		http.StatusServiceUnavailable,
	)

	ErrUpstreamError = New(
		"UPSTREAM_ERROR",
		"Sotkanet API request failed",
		http.StatusBadGateway,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
