package utils

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// IDParam reads a positive integer path parameter. On failure it answers 400 with msg.
func IDParam(w http.ResponseWriter, r *http.Request, key, msg string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil || id <= 0 {
		RespondWithError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}
