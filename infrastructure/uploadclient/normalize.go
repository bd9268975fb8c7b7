package uploadclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"invite-media/domain/failure"
	"invite-media/domain/upload"
)

// maxPreview caps how much of a raw body ends up in an error message
const maxPreview = 512

// uploadResponse is the body returned by POST /upload
type uploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Error   string `json:"error"`
}

// Normalize turns an upload response into a receipt or a classified failure.
// The body has already been read as text; JSON is only attempted afterwards.
func Normalize(status int, body []byte) (upload.Receipt, error) {
	ok := status >= 200 && status <= 299

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if !ok {
			return upload.Receipt{}, statusError(status, body, "")
		}
		return upload.Receipt{}, failure.Wrap(failure.CodeUnexpectedResponse,
			fmt.Sprintf("unexpected response: %s", preview(body)), err).WithStatus(status)
	}

	if !ok || !parsed.Success || parsed.ID == "" {
		msg := parsed.Error
		if msg == "" {
			msg = fallbackMessage(status, ok, parsed)
		}
		return upload.Receipt{}, failure.New(failure.CodeServerResponse, msg).WithStatus(status)
	}

	return upload.Receipt{ID: parsed.ID, Name: parsed.Name}, nil
}

// statusError is a non-2xx response. A decoded error message wins, then the
// body as-is.
func statusError(status int, body []byte, message string) *failure.Error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = jsonError(body)
	}
	if msg == "" {
		msg = strings.TrimSpace(preview(body))
	}
	if msg == "" {
		msg = fmt.Sprintf("server returned HTTP %d", status)
	}
	return failure.New(failure.CodeServerResponse, msg).WithStatus(status)
}

func jsonError(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	return parsed.Error
}

func fallbackMessage(status int, ok bool, parsed uploadResponse) string {
	switch {
	case !ok:
		return fmt.Sprintf("server returned HTTP %d", status)
	case !parsed.Success:
		return "server reported the upload as unsuccessful"
	default:
		return "server response is missing the file id"
	}
}

func preview(body []byte) string {
	if len(body) > maxPreview {
		return string(body[:maxPreview]) + "..."
	}
	return string(body)
}
