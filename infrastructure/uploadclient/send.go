package uploadclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"invite-media/domain/failure"
	"invite-media/domain/upload"
)

// Send implements upload.Transport. The multipart form is written through a
// pipe and handed to resty as a reader body, so a video is never held in
// memory while it is sent.
func (c *Client) Send(ctx context.Context, p upload.Payload, folderID string) (upload.Receipt, error) {
	content, err := p.Open()
	if err != nil {
		return upload.Receipt{}, failure.Wrap(failure.CodeInvalidInput, fmt.Sprintf("unable to read %s", p.Name()), err)
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	form := multipart.NewWriter(pw)
	go func() {
		defer content.Close()
		pw.CloseWithError(writeForm(form, p, content, folderID))
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", form.FormDataContentType()).
		SetBody(pr).
		Post("/upload")
	if err != nil {
		return upload.Receipt{}, transportError(ctx, err)
	}
	return Normalize(resp.StatusCode(), resp.Body())
}

func writeForm(form *multipart.Writer, p upload.Payload, content io.Reader, folderID string) error {
	if err := form.WriteField("folderId", folderID); err != nil {
		return err
	}

	contentType := p.MimeType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(p.Name())))
	h.Set("Content-Type", contentType)

	part, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return form.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

var _ upload.Transport = (*Client)(nil)
