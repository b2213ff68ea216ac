package apperrors

import (
	"net/http"
)

// Factories for wrapping repository errors into AppErrors.

// ErrNotFound converts a storage "no rows" error into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// --- Auth ---

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// --- Gigs ---

// ErrGigNotOpen: the gig is past the point where this operation is legal.
// Definitive rejection; retrying without re-reading state repeats the outcome.
var ErrGigNotOpen = New(
	CodeInvalidStatus,
	"gig",
	"Gig is no longer open",
	http.StatusConflict,
)

// ErrGigNotAssigned: payment operations require an assigned gig.
var ErrGigNotAssigned = New(
	CodeInvalidStatus,
	"gig",
	"Gig is not assigned",
	http.StatusConflict,
)

// ErrInvalidGigTransition: the requested lifecycle transition is not in the
// transition table.
var ErrInvalidGigTransition = New(
	CodeInvalidTransition,
	"gig",
	"Invalid gig status transition",
	http.StatusConflict,
)

// ErrGigStatusConflict: lost a compare-and-set race on the gig row.
var ErrGigStatusConflict = New(
	CodeConflict,
	"gig",
	"Gig was modified concurrently, re-fetch and retry",
	http.StatusConflict,
)

// ErrGigHasAcceptedInterest: close is only legal while no professional has
// been accepted.
var ErrGigHasAcceptedInterest = New(
	CodeInvalidStatus,
	"gig",
	"Gig already has an accepted professional",
	http.StatusConflict,
)

// --- Interests ---

// ErrInterestAlreadyExists: one expression per (gig, professional) pair.
var ErrInterestAlreadyExists = New(
	CodeAlreadyExists,
	"interest",
	"You have already expressed interest in this gig",
	http.StatusConflict,
)

// ErrInterestNotPending: the expression has already been decided.
var ErrInterestNotPending = New(
	CodeInvalidStatus,
	"interest",
	"Interest has already been processed",
	http.StatusConflict,
)

// --- Payments ---

var ErrPaymentProviderError = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusServiceUnavailable,
)
