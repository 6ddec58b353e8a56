package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// ErrInvalidBody is returned for bodies that are not a JSON object.
var ErrInvalidBody = apperror.Validation("INVALID_BODY", "invalid request body")

// DecodeJSON 解析请求体。空请求体视为零值。
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrInvalidBody
	}
	return nil
}

// RequestLocale prefers an explicit value and falls back to Accept-Language.
func RequestLocale(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return r.Header.Get("Accept-Language")
}
