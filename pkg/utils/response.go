package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// Envelope is the wrapper shared by every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondData 发送成功响应
func RespondData(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage 发送带提示信息的成功响应
func RespondMessage(w http.ResponseWriter, status int, data any, message string) {
	RespondJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// RespondServiceError maps a service error onto the envelope. Foreign and upstream
// errors are logged with their full text; the client only sees the safe message.
func RespondServiceError(w http.ResponseWriter, area string, err error) {
	status := apperror.StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] request failed: %v", area, err)
	}
	RespondJSON(w, status, Envelope{
		Success: false,
		Error:   apperror.MessageOf(err),
		Code:    apperror.CodeOf(err),
	})
}
