package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

var kindStatus = map[hunt.Kind]int{
	hunt.KindNotFound:   http.StatusNotFound,
	hunt.KindForbidden:  http.StatusForbidden,
	hunt.KindBadRequest: http.StatusBadRequest,
	hunt.KindConflict:   http.StatusConflict,
}

// writeHuntError maps a hunt error to its HTTP status. Internal errors are
// logged with their cause and returned with the cause's message.
func writeHuntError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, ok := kindStatus[hunt.KindOf(err)]
	var he *hunt.Error
	if !ok || !errors.As(err, &he) {
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeError(w, status, he.Msg)
}
