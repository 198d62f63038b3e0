package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged server-side with its technical detail and the
// request ID, then returned to the client as a coded user message in the
// format the request asked for (HTMX fragment, JSON, or plain HTML).
//
// # Error Codes Reference
//
//	TBL001 - Unknown table: no table is mounted under that name
//	TBL002 - Row not found: the row key is not in the current data
//	TBL003 - Unknown column: the column does not exist on the table
//	TBL004 - Selection disabled: the table was mounted without selection
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//	DB004  - Connection refused while loading rows
//	RATE001 - Rate limited
//	ERR000 - Unknown error

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/JonMunkholm/structtable/internal/web/templates"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrUnknownTable is returned for a table name that is not mounted.
var ErrUnknownTable = errors.New("unknown table")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status
}

// errorMapping matches either a sentinel error or a message pattern.
type errorMapping struct {
	target  error
	pattern string
	msg     UserMessage
}

// errorMappings are checked in order; the first match wins.
var errorMappings = []errorMapping{
	{
		target: ErrUnknownTable,
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
			Status:  http.StatusNotFound,
		},
	},
	{
		target: table.ErrRowNotFound,
		msg: UserMessage{
			Message: "Row not found",
			Action:  "The row may have been removed. Reload the table",
			Code:    "TBL002",
			Status:  http.StatusNotFound,
		},
	},
	{
		target: table.ErrUnknownColumn,
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Reload the table to get the current columns",
			Code:    "TBL003",
			Status:  http.StatusBadRequest,
		},
	},
	{
		target: table.ErrSelectionOff,
		msg: UserMessage{
			Message: "Rows of this table cannot be selected",
			Code:    "TBL004",
			Status:  http.StatusConflict,
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
			Status:  http.StatusGatewayTimeout,
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
			Status:  http.StatusTooManyRequests,
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return defaultMessage
	}
	lower := strings.ToLower(err.Error())
	for _, m := range errorMappings {
		if m.target != nil && errors.Is(err, m.target) {
			return m.msg
		}
		if m.pattern != "" && strings.Contains(lower, m.pattern) {
			return m.msg
		}
	}
	return defaultMessage
}

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user message in the format the
// request prefers. The status comes from the error mapping.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", userMsg.Status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg)
	default:
		respondErrorHTML(w, userMsg)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(msg.Status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondErrorHTML(w http.ResponseWriter, msg UserMessage) {
	http.Error(w, msg.Message+" ("+msg.Code+")", msg.Status)
}

// renderErrorPartial writes an alert fragment. htmx does not swap error
// responses by default, so the alert is retargeted to the page's error slot.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg UserMessage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#errors")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(msg.Status)
	templates.ErrorAlert(msg.Code, msg.Message, msg.Action).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
