package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/setpoint-app/setpoint/internal/fault"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps a fault code to its HTTP status. Validation-class faults keep
// their message in the body; store-level failures get a generic 500 body and
// a full log line.
func Error(w http.ResponseWriter, err error) {
	code, ok := fault.CodeOf(err)
	if !ok {
		code = fault.StoreUnavailable
	}

	switch code {
	case fault.InvalidRequest, fault.NothingToUndo:
		slog.Warn("request rejected", "code", code, "error", err)
		JSON(w, http.StatusBadRequest, errorBody{Error: string(code), Detail: err.Error()})
	case fault.NotFound:
		slog.Warn("not found", "error", err)
		JSON(w, http.StatusNotFound, errorBody{Error: string(code), Detail: err.Error()})
	default:
		slog.Error("operation failed", "code", code, "error", err)
		JSON(w, http.StatusInternalServerError, errorBody{Error: string(code), Detail: "internal server error"})
	}
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	JSON(w, http.StatusBadRequest, errorBody{Error: string(fault.InvalidRequest), Detail: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	slog.Warn("unauthorized", "message", msg)
	JSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Detail: msg})
}
