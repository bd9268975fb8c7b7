package drive

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/domain/storage"
	"invite-media/domain/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedUpload struct {
	auth          string
	contentLength int64
	metadata      map[string]any
	partType      string
	content       []byte
}

func newUploadServer(t *testing.T, status int, body string, got *capturedUpload) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.auth = r.Header.Get("Authorization")
		got.contentLength = r.ContentLength

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/related" {
			http.Error(w, "bad content type", http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])

		metaPart, err := mr.NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewDecoder(metaPart).Decode(&got.metadata)

		filePart, err := mr.NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got.partType = filePart.Header.Get("Content-Type")
		got.content, _ = io.ReadAll(filePart)

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func bearer(v string) credential.AccessToken {
	return credential.AccessToken{Value: v, Type: "Bearer", Expiry: time.Now().Add(time.Hour)}
}

func TestUploader_Create(t *testing.T) {
	var got capturedUpload
	srv := newUploadServer(t, http.StatusOK, `{"id":"drive-file-1","name":"cake.jpg","mimeType":"image/jpeg","size":"5"}`, &got)

	u := NewUploader(WithUploadURL(srv.URL))
	payload := upload.NewBytesPayload("cake.jpg", "image/jpeg", []byte("jpeg!"))

	info, err := u.Create(context.Background(), bearer("ya29.t"), storage.ObjectMetadata{FolderID: "folder-1", Name: "cake.jpg"}, payload)
	require.NoError(t, err)

	assert.Equal(t, "drive-file-1", info.ID)
	assert.Equal(t, "cake.jpg", info.Name)
	assert.EqualValues(t, 5, info.Size)

	assert.Equal(t, "Bearer ya29.t", got.auth)
	assert.Greater(t, got.contentLength, int64(len("jpeg!")), "request must carry an exact content length")
	assert.Equal(t, "cake.jpg", got.metadata["name"])
	assert.Equal(t, []any{"folder-1"}, got.metadata["parents"])
	assert.Equal(t, "image/jpeg", got.partType)
	assert.Equal(t, []byte("jpeg!"), got.content)
}

func TestUploader_Create_OctetStreamFallback(t *testing.T) {
	var got capturedUpload
	srv := newUploadServer(t, http.StatusOK, `{"id":"x"}`, &got)

	u := NewUploader(WithUploadURL(srv.URL))
	_, err := u.Create(context.Background(), bearer("t"), storage.ObjectMetadata{FolderID: "f", Name: "clip"}, upload.NewBytesPayload("clip", "", []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", got.partType)
}

func TestUploader_Create_Rejected(t *testing.T) {
	var got capturedUpload
	srv := newUploadServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"The user does not have sufficient permissions for this file."}}`, &got)

	u := NewUploader(WithUploadURL(srv.URL))
	_, err := u.Create(context.Background(), bearer("t"), storage.ObjectMetadata{FolderID: "f", Name: "a.png"}, upload.NewBytesPayload("a.png", "image/png", []byte("png")))
	require.Error(t, err)

	fe := failure.From(err)
	assert.Equal(t, failure.CodeStorage, fe.Code)
	assert.Equal(t, http.StatusForbidden, fe.Status)
	assert.Contains(t, err.Error(), "sufficient permissions")
}

func TestUploader_Create_NoID(t *testing.T) {
	var got capturedUpload
	srv := newUploadServer(t, http.StatusOK, `{"name":"a.png"}`, &got)

	u := NewUploader(WithUploadURL(srv.URL))
	_, err := u.Create(context.Background(), bearer("t"), storage.ObjectMetadata{FolderID: "f", Name: "a.png"}, upload.NewBytesPayload("a.png", "image/png", []byte("png")))
	assert.True(t, failure.Is(err, failure.CodeUnexpectedResponse))
}

func TestUploader_Create_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	u := NewUploader(WithUploadURL(url))
	_, err := u.Create(context.Background(), bearer("t"), storage.ObjectMetadata{FolderID: "f", Name: "a.png"}, upload.NewBytesPayload("a.png", "image/png", []byte("png")))
	assert.True(t, failure.Is(err, failure.CodeNetwork))
}
