package response

import (
	"encoding/json"
	"net/http"
)

// errorBody is the envelope for every failure response. Code carries a
// machine-readable discriminator (e.g. TOKEN_EXPIRED) when a client needs to
// branch on the failure; most failures carry only a message.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func Message(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, map[string]string{"message": message})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, errorBody{Message: message})
}

// ErrorCode writes a failure with a machine-readable code alongside the message.
func ErrorCode(w http.ResponseWriter, statusCode int, message, code string) {
	JSON(w, statusCode, errorBody{Message: message, Code: code})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
