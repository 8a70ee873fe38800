package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"jobboard/internal/common"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

const genericErrorMessage = "something went wrong"

var hideInternal atomic.Bool

// HideInternalErrors replaces messages of 5xx responses with a generic one.
// Enabled in production.
func HideInternalErrors(hide bool) {
	hideInternal.Store(hide)
}

type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Code    common.Code       `json:"code,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: StatusSuccess, Data: data})
}

func Message(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, genericErrorMessage, err)
	}
	status := common.HTTPStatus(appErr.Code)
	body := Envelope{Status: StatusFail, Message: appErr.Message, Code: appErr.Code, Errors: appErr.Fields}
	if status >= http.StatusInternalServerError {
		body.Status = StatusError
		slog.Error("request failed", slog.String("code", string(appErr.Code)), slog.String("error", err.Error()))
		if hideInternal.Load() {
			body.Message = genericErrorMessage
		}
	}
	write(w, status, body)
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
