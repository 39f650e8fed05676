package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an error body is kept in a message.
const maxErrorBody = 512

// googleErrorBody is the error envelope shared by the Google Maps Platform APIs.
type googleErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// CheckResponse returns nil for a 2xx response. Otherwise it reads the body
// and maps the status to an *Error, preferring the provider's own message.
// The caller still owns resp.Body.
func CheckResponse(providerName string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // best effort for the message
	return FromStatus(providerName, resp.StatusCode, errorMessage(body))
}

// DecodeJSON decodes a successful provider response into v.
func DecodeJSON(providerName string, resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{
			Provider: providerName,
			Code:     "DECODE_FAILED",
			Status:   resp.StatusCode,
			Message:  "malformed provider response",
			Err:      fmt.Errorf("%w: %w", ErrNoResults, err),
		}
	}
	return nil
}

func errorMessage(body []byte) string {
	var ge googleErrorBody
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return ge.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
