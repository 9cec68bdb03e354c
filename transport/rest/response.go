package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message, errCode string) {
	respondWithJSON(w, code, ErrorResponse{Error: message, Code: errCode})
}

// respondWithAppError maps a use case error onto an HTTP status.
func respondWithAppError(w http.ResponseWriter, err error) {
	code := apperror.Code(err)

	switch code {
	case apperror.CodeInvalidColumn, apperror.CodeInvalidPlayer:
		respondWithError(w, http.StatusBadRequest, err.Error(), code)
	case apperror.CodeGameNotFound:
		respondWithError(w, http.StatusNotFound, "game not found", code)
	case apperror.CodeColumnFull, apperror.CodeGameFinished, apperror.CodeNotYourTurn:
		respondWithError(w, http.StatusConflict, err.Error(), code)
	case apperror.CodeUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, "game state is unavailable", code)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error", code)
	}
}
