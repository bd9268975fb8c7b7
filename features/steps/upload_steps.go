//go:build integration

package steps

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	appupload "invite-media/application/upload"
	"invite-media/application/ingest"
	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/domain/upload"
	"invite-media/infrastructure/drive"
	"invite-media/infrastructure/googleauth"
	"invite-media/infrastructure/httpapi"
	"invite-media/infrastructure/uploadclient"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
	googledrive "google.golang.org/api/drive/v3"
)

const testAPIKey = "guest-key"

// sizedPayload reports a size without holding the bytes, for admission checks
type sizedPayload struct {
	name     string
	mimeType string
	size     int64
}

func (p *sizedPayload) Name() string     { return p.name }
func (p *sizedPayload) MimeType() string { return p.mimeType }
func (p *sizedPayload) Size() int64      { return p.size }
func (p *sizedPayload) Open() (io.ReadCloser, error) {
	return nil, fmt.Errorf("%s has no content", p.name)
}

// recordingEncoder shrinks every image to a tenth and remembers the options it saw
type recordingEncoder struct {
	mu   sync.Mutex
	seen []upload.EncodeOptions
}

func (e *recordingEncoder) Encode(data []byte, mimeType string, opts upload.EncodeOptions) ([]byte, error) {
	e.mu.Lock()
	e.seen = append(e.seen, opts)
	e.mu.Unlock()
	return bytes.Repeat([]byte{0xFF}, len(data)/10), nil
}

type uploadContext struct {
	tokenServer *httptest.Server
	driveServer *httptest.Server
	apiServer   *httptest.Server

	tokenRejection string
	tokenCalls     atomic.Int32
	driveCalls     atomic.Int32
	apiCalls       atomic.Int32

	folderID  string
	encoder   *recordingEncoder
	output    *bytes.Buffer
	service   *appupload.Service
	rejected  []upload.Rejection
	summary   appupload.Summary
	uploadErr error
	sendErr   error
}

var SharedUploadContext = &uploadContext{}

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedUploadContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*testCtx = uploadContext{
			encoder: &recordingEncoder{},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		for _, srv := range []*httptest.Server{testCtx.apiServer, testCtx.driveServer, testCtx.tokenServer} {
			if srv != nil {
				srv.Close()
			}
		}
		return c, nil
	})

	ctx.Step(`^the media service is running$`, testCtx.theMediaServiceIsRunning)
	ctx.Step(`^the token endpoint rejects assertions with "([^"]*)"$`, testCtx.theTokenEndpointRejectsAssertionsWith)
	ctx.Step(`^the upload folder is "([^"]*)"$`, testCtx.theUploadFolderIs)
	ctx.Step(`^I add a (\d+) (KiB|MiB) JPEG named "([^"]*)"$`, testCtx.iAddAJPEG)
	ctx.Step(`^I add a (\d+) MiB video named "([^"]*)"$`, testCtx.iAddAVideo)
	ctx.Step(`^I upload the batch$`, testCtx.iUploadTheBatch)
	ctx.Step(`^I send "([^"]*)" straight to the media service$`, testCtx.iSendStraightToTheMediaService)
	ctx.Step(`^the photo should be encoded at (\d+) px and quality ([\d.]+)$`, testCtx.thePhotoShouldBeEncodedAt)
	ctx.Step(`^item "([^"]*)" should have status "([^"]*)"$`, testCtx.itemShouldHaveStatus)
	ctx.Step(`^item "([^"]*)" should have receipt id "([^"]*)"$`, testCtx.itemShouldHaveReceiptID)
	ctx.Step(`^the summary should be "([^"]*)"$`, testCtx.theSummaryShouldBe)
	ctx.Step(`^the file should be rejected citing "([^"]*)"$`, testCtx.theFileShouldBeRejectedCiting)
	ctx.Step(`^the batch should be empty$`, testCtx.theBatchShouldBeEmpty)
	ctx.Step(`^the media service should have received (\d+) requests?$`, testCtx.theMediaServiceShouldHaveReceived)
	ctx.Step(`^storage should have received (\d+) requests?$`, testCtx.storageShouldHaveReceived)
	ctx.Step(`^the upload should fail with HTTP (\d+)$`, testCtx.theUploadShouldFailWithHTTP)
	ctx.Step(`^the failure message should be "([^"]*)"$`, testCtx.theFailureMessageShouldBe)
}

func generateTestKey() (string, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", err
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

func (u *uploadContext) theMediaServiceIsRunning() error {
	u.tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if u.tokenRejection != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":%q,"error_description":"Invalid JWT Signature."}`, u.tokenRejection)
			return
		}
		fmt.Fprint(w, `{"access_token":"ya29.test","token_type":"Bearer","expires_in":3599}`)
	}))

	u.driveServer = httptest.NewServer(http.HandlerFunc(u.serveDrive))

	key, err := generateTestKey()
	if err != nil {
		return err
	}
	broker := googleauth.NewBroker(
		googleauth.StaticSource(credential.ServiceCredential{
			ClientEmail: "uploader@invite.iam.gserviceaccount.com",
			PrivateKey:  key,
		}),
		googleauth.WithTokenURL(u.tokenServer.URL),
	)
	ingestService := ingest.NewService(
		broker,
		drive.NewUploader(drive.WithUploadURL(u.driveServer.URL)),
		googledrive.DriveScope,
	)

	server := httpapi.New(httpapi.Settings{APIKey: testAPIKey}, zerolog.Nop(), ingestService, nil, nil)
	handler := server.Handler()
	u.apiServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.apiCalls.Add(1)
		handler.ServeHTTP(w, r)
	}))
	return nil
}

// serveDrive answers multipart/related uploads with the stored file's id
// and the name from the metadata part
func (u *uploadContext) serveDrive(w http.ResponseWriter, r *http.Request) {
	u.driveCalls.Add(1)

	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var meta struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(part).Decode(&meta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"abc","name":%q,"mimeType":"image/jpeg"}`, meta.Name)
}

func (u *uploadContext) client() *uploadclient.Client {
	return uploadclient.New(u.apiServer.URL, uploadclient.WithAPIKey(testAPIKey))
}

func (u *uploadContext) theTokenEndpointRejectsAssertionsWith(code string) error {
	u.tokenRejection = code
	return nil
}

func (u *uploadContext) theUploadFolderIs(folderID string) error {
	u.folderID = folderID
	compressor := appupload.NewCompressor(u.encoder)
	u.service = appupload.NewService(
		u.client(),
		appupload.StaticFolder(folderID),
		u.output,
		appupload.WithCompressor(compressor),
		appupload.WithBatchSize(3),
	)
	return nil
}

func (u *uploadContext) admit(p upload.Payload) {
	_, rejected := u.service.Admit(p)
	u.rejected = append(u.rejected, rejected...)
}

func (u *uploadContext) iAddAJPEG(n int, unit, name string) error {
	size := n * 1024
	if unit == "MiB" {
		size *= 1024
	}
	u.admit(upload.NewBytesPayload(name, "image/jpeg", bytes.Repeat([]byte{0xAB}, size)))
	return nil
}

func (u *uploadContext) iAddAVideo(n int, name string) error {
	u.admit(&sizedPayload{name: name, mimeType: "video/quicktime", size: int64(n) * upload.MiB})
	return nil
}

func (u *uploadContext) iUploadTheBatch() error {
	u.summary, u.uploadErr = u.service.Upload(context.Background())
	return nil
}

func (u *uploadContext) iSendStraightToTheMediaService(name string) error {
	p := upload.NewBytesPayload(name, "image/jpeg", bytes.Repeat([]byte{0xAB}, 1024))
	_, u.sendErr = u.client().Send(context.Background(), p, "folder-1")
	return nil
}

func (u *uploadContext) find(name string) (upload.Item, error) {
	for _, item := range u.service.Batch().Items() {
		if item.Name() == name {
			return item, nil
		}
	}
	return upload.Item{}, fmt.Errorf("no item named %q in the batch", name)
}

func (u *uploadContext) thePhotoShouldBeEncodedAt(dimension int, quality float64) error {
	u.encoder.mu.Lock()
	defer u.encoder.mu.Unlock()
	if len(u.encoder.seen) == 0 {
		return fmt.Errorf("the encoder was never called")
	}
	got := u.encoder.seen[0]
	if got.MaxDimension != dimension || got.Quality != quality {
		return fmt.Errorf("expected %d px at quality %.2f, got %d px at %.2f", dimension, quality, got.MaxDimension, got.Quality)
	}
	return nil
}

func (u *uploadContext) itemShouldHaveStatus(name, status string) error {
	item, err := u.find(name)
	if err != nil {
		return err
	}
	if string(item.Status) != status {
		return fmt.Errorf("expected %s to be %s, got %s (%v)", name, status, item.Status, item.Err)
	}
	return nil
}

func (u *uploadContext) itemShouldHaveReceiptID(name, id string) error {
	item, err := u.find(name)
	if err != nil {
		return err
	}
	if item.Receipt.ID != id {
		return fmt.Errorf("expected receipt id %q, got %q", id, item.Receipt.ID)
	}
	return nil
}

func (u *uploadContext) theSummaryShouldBe(expected string) error {
	if u.uploadErr != nil {
		return fmt.Errorf("upload returned an error: %w", u.uploadErr)
	}
	if u.summary.String() != expected {
		return fmt.Errorf("expected summary %q, got %q", expected, u.summary.String())
	}
	return nil
}

func (u *uploadContext) theFileShouldBeRejectedCiting(text string) error {
	if len(u.rejected) != 1 {
		return fmt.Errorf("expected one rejection, got %d", len(u.rejected))
	}
	if u.rejected[0].Err.Code != failure.CodeAdmission {
		return fmt.Errorf("expected an admission rejection, got %s", u.rejected[0].Err.Code)
	}
	if !strings.Contains(u.rejected[0].Err.Message, text) {
		return fmt.Errorf("expected rejection to mention %q, got %q", text, u.rejected[0].Err.Message)
	}
	return nil
}

func (u *uploadContext) theBatchShouldBeEmpty() error {
	if n := u.service.Batch().Len(); n != 0 {
		return fmt.Errorf("expected an empty batch, got %d items", n)
	}
	return nil
}

func (u *uploadContext) theMediaServiceShouldHaveReceived(n int) error {
	if got := int(u.apiCalls.Load()); got != n {
		return fmt.Errorf("expected %d requests to the media service, got %d", n, got)
	}
	return nil
}

func (u *uploadContext) storageShouldHaveReceived(n int) error {
	if got := int(u.driveCalls.Load()); got != n {
		return fmt.Errorf("expected %d requests to storage, got %d", n, got)
	}
	return nil
}

func (u *uploadContext) theUploadShouldFailWithHTTP(status int) error {
	if u.sendErr == nil {
		return fmt.Errorf("expected the upload to fail")
	}
	fe := failure.From(u.sendErr)
	if fe.Status != status {
		return fmt.Errorf("expected HTTP %d, got %d (%v)", status, fe.Status, fe)
	}
	return nil
}

func (u *uploadContext) theFailureMessageShouldBe(expected string) error {
	fe := failure.From(u.sendErr)
	if fe == nil {
		return fmt.Errorf("expected the upload to fail")
	}
	if fe.Message != expected {
		return fmt.Errorf("expected message %q, got %q", expected, fe.Message)
	}
	return nil
}
