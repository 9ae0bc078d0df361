package utils

import (
	"errors"
	"net/http"

	"github.com/GlebRadaev/gofood/internal/domain"
)

// StatusFor maps a classified business error to its HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindState:
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrMenuItemNotFound) {
			return http.StatusNotFound
		}
		return http.StatusConflict
	case domain.KindFunds:
		return http.StatusPaymentRequired
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError writes err with the status of its kind. Internal details are not exposed.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		RespondWithError(w, code, "Internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}
