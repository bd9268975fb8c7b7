package ingest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/domain/storage"
	"invite-media/domain/upload"

	"github.com/rs/zerolog"
)

const testScope = "https://www.googleapis.com/auth/drive.file"

type mockTokens struct {
	calls  int
	scopes []string
	err    error
}

func (m *mockTokens) Token(ctx context.Context, scope string) (credential.AccessToken, error) {
	m.calls++
	m.scopes = append(m.scopes, scope)
	if m.err != nil {
		return credential.AccessToken{}, m.err
	}
	return credential.AccessToken{Value: "ya29.secret-token", Type: "Bearer"}, nil
}

type mockWriter struct {
	calls int
	meta  storage.ObjectMetadata
	token credential.AccessToken
	err   error
}

func (m *mockWriter) Create(ctx context.Context, token credential.AccessToken, meta storage.ObjectMetadata, p upload.Payload) (storage.ObjectInfo, error) {
	m.calls++
	m.meta = meta
	m.token = token
	if m.err != nil {
		return storage.ObjectInfo{}, m.err
	}
	return storage.ObjectInfo{ID: "drive-" + meta.Name, Name: meta.Name}, nil
}

func TestService_Upload(t *testing.T) {
	tests := []struct {
		name       string
		folderID   string
		payload    upload.Payload
		tokenErr   error
		writeErr   error
		wantCode   failure.Code
		wantTokens int
		wantWrites int
		wantKind   upload.Kind
	}{
		{
			name:       "stores an image",
			folderID:   "folder-1",
			payload:    upload.NewBytesPayload("cake.jpg", "image/jpeg", []byte("jpeg")),
			wantTokens: 1,
			wantWrites: 1,
			wantKind:   upload.KindImage,
		},
		{
			name:       "stores a video",
			folderID:   "folder-1",
			payload:    upload.NewBytesPayload("toast.mov", "video/quicktime", []byte("mov")),
			wantTokens: 1,
			wantWrites: 1,
			wantKind:   upload.KindVideo,
		},
		{
			name:     "missing folder",
			payload:  upload.NewBytesPayload("cake.jpg", "image/jpeg", []byte("jpeg")),
			wantCode: failure.CodeInvalidInput,
		},
		{
			name:     "missing file",
			folderID: "folder-1",
			wantCode: failure.CodeInvalidInput,
		},
		{
			name:     "unsupported type never reaches the broker",
			folderID: "folder-1",
			payload:  upload.NewBytesPayload("notes.pdf", "application/pdf", []byte("%PDF")),
			wantCode: failure.CodeAdmission,
		},
		{
			name:       "credential failure",
			folderID:   "folder-1",
			payload:    upload.NewBytesPayload("cake.jpg", "image/jpeg", []byte("jpeg")),
			tokenErr:   failure.Wrap(failure.CodeCredential, "service account credential is incomplete", credential.ErrMissingCredential),
			wantCode:   failure.CodeCredential,
			wantTokens: 1,
		},
		{
			name:       "storage failure",
			folderID:   "folder-1",
			payload:    upload.NewBytesPayload("cake.jpg", "image/jpeg", []byte("jpeg")),
			writeErr:   failure.New(failure.CodeStorage, "storage rejected").WithStatus(403),
			wantCode:   failure.CodeStorage,
			wantTokens: 1,
			wantWrites: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mockTokens{err: tt.tokenErr}
			writer := &mockWriter{err: tt.writeErr}
			svc := NewService(tokens, writer, testScope)

			res, err := svc.Upload(context.Background(), tt.folderID, tt.payload)

			if tokens.calls != tt.wantTokens {
				t.Errorf("expected %d token requests, got %d", tt.wantTokens, tokens.calls)
			}
			if writer.calls != tt.wantWrites {
				t.Errorf("expected %d writes, got %d", tt.wantWrites, writer.calls)
			}

			if tt.wantCode != "" {
				if !failure.Is(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, res.Kind)
			}
			if res.Object.ID != "drive-"+tt.payload.Name() {
				t.Errorf("unexpected object id %q", res.Object.ID)
			}
			if writer.meta.FolderID != tt.folderID || writer.meta.Name != tt.payload.Name() {
				t.Errorf("unexpected metadata %+v", writer.meta)
			}
			if tokens.scopes[0] != testScope {
				t.Errorf("expected scope %q, got %q", testScope, tokens.scopes[0])
			}
		})
	}
}

func TestService_Upload_FreshTokenPerRequest(t *testing.T) {
	tokens := &mockTokens{}
	svc := NewService(tokens, &mockWriter{}, testScope)

	for range 3 {
		if _, err := svc.Upload(context.Background(), "folder", upload.NewBytesPayload("a.png", "image/png", []byte("png"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if tokens.calls != 3 {
		t.Errorf("expected one token request per upload, got %d", tokens.calls)
	}
}

func TestService_Upload_DoesNotLogTokens(t *testing.T) {
	var buf bytes.Buffer
	writer := &mockWriter{err: errors.New("connection reset")}
	svc := NewService(&mockTokens{}, writer, testScope, WithLogger(zerolog.New(&buf)))

	_, _ = svc.Upload(context.Background(), "folder", upload.NewBytesPayload("a.png", "image/png", []byte("png")))

	if strings.Contains(buf.String(), "ya29.secret-token") {
		t.Error("access token leaked into logs")
	}
	if !strings.Contains(buf.String(), "storage write failed") {
		t.Errorf("expected failure to be logged, got %s", buf.String())
	}
}
