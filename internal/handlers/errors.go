package handlers

import (
	"errors"
	"log"
	"net/http"

	"typeb/internal/security"
	"typeb/internal/service"
	"typeb/internal/validation"
)

// respondError maps service errors to HTTP status codes and writes the
// failure envelope. Unexpected errors are logged and reported as 500 without
// leaking detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		message = "internal server error"
	}

	writeJSON(w, status, APIResponse{Success: false, Message: message})
}

func statusFor(err error) int {
	var ve validation.ValidationError
	var ves validation.ValidationErrors
	if errors.As(err, &ve) || errors.As(err, &ves) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefresh),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFamilyMember),
		errors.Is(err, service.ErrNotParent),
		errors.Is(err, service.ErrNotAssignee),
		errors.Is(err, service.ErrPremiumRequired):
		return http.StatusForbidden

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrRewardNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyInFamily),
		errors.Is(err, service.ErrFamilyFull),
		errors.Is(err, service.ErrLastParent),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicatePending),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrRewardInactive),
		errors.Is(err, service.ErrInsufficientPoints):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidInviteCode),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrAssigneeNotMember),
		errors.Is(err, service.ErrPhotoRequired),
		errors.Is(err, service.ErrMissingPhoto),
		errors.Is(err, service.ErrInvalidReward),
		errors.Is(err, service.ErrUnsupportedPhotoType):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
