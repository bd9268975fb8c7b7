package uploadclient

import (
	"testing"

	"invite-media/domain/failure"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantID      string
		wantCode    failure.Code
		wantMessage string
	}{
		{
			name:   "success",
			status: 200,
			body:   `{"success":true,"id":"drive-1","name":"cake.jpg"}`,
			wantID: "drive-1",
		},
		{
			name:        "non-2xx with html body surfaces raw text",
			status:      502,
			body:        "<html>Bad Gateway</html>",
			wantCode:    failure.CodeServerResponse,
			wantMessage: "<html>Bad Gateway</html>",
		},
		{
			name:        "non-2xx with empty body",
			status:      500,
			body:        "",
			wantCode:    failure.CodeServerResponse,
			wantMessage: "server returned HTTP 500",
		},
		{
			name:        "2xx with non-json body",
			status:      200,
			body:        "OK",
			wantCode:    failure.CodeUnexpectedResponse,
			wantMessage: "unexpected response: OK",
		},
		{
			name:        "2xx without id",
			status:      200,
			body:        `{"success":true}`,
			wantCode:    failure.CodeServerResponse,
			wantMessage: "server response is missing the file id",
		},
		{
			name:        "2xx with success false",
			status:      200,
			body:        `{"success":false,"id":"x"}`,
			wantCode:    failure.CodeServerResponse,
			wantMessage: "server reported the upload as unsuccessful",
		},
		{
			name:        "server error string wins",
			status:      400,
			body:        `{"success":false,"error":"Missing file or folderId"}`,
			wantCode:    failure.CodeServerResponse,
			wantMessage: "Missing file or folderId",
		},
		{
			name:        "credential failure reported by server",
			status:      500,
			body:        `{"success":false,"error":"Storage credentials are not configured"}`,
			wantCode:    failure.CodeServerResponse,
			wantMessage: "Storage credentials are not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := Normalize(tt.status, []byte(tt.body))
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if receipt.ID != tt.wantID {
					t.Errorf("expected id %q, got %q", tt.wantID, receipt.ID)
				}
				return
			}

			fe := failure.From(err)
			if fe == nil {
				t.Fatal("expected error")
			}
			if fe.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, fe.Code)
			}
			if fe.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, fe.Message)
			}
			if fe.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, fe.Status)
			}
		})
	}
}

func TestNormalize_Retriable(t *testing.T) {
	_, err := Normalize(503, []byte("unavailable"))
	if !failure.From(err).Retriable {
		t.Error("503 should be retriable")
	}
	_, err = Normalize(400, []byte(`{"error":"bad"}`))
	if failure.From(err).Retriable {
		t.Error("400 should not be retriable")
	}
}
