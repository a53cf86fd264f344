package apimodel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

func NewErrorMessage(status int, message string) ErrorMessage {
	if message == "" {
		message = StatusMessage(status)
	}
	return ErrorMessage{ErrStatusCode: status, ErrMessage: message}
}

func (e *ErrorMessage) StatusCode() int {
	return e.ErrStatusCode
}

func (e *ErrorMessage) Error() string {
	if e.ErrMessage != "" {
		return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
	} else {
		return strconv.Itoa(e.ErrStatusCode)
	}
}

// StatusMessage is the message sent when a handler gives none.
func StatusMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "Ok"
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Internal error"
	}
}

func (v ErrorMessage) SendError(w http.ResponseWriter) {
	if v.ErrMessage == "" {
		v.ErrMessage = StatusMessage(v.ErrStatusCode)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(v.ErrStatusCode)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logrus.Warnf("Unable to encode error message: %v", err)
	}
}

//errors message
var (
	WrongParametersErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "unable to parse parameters",
	}
	FaceUnavailableErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusServiceUnavailable,
		ErrMessage:    "face is not running",
	}
)
