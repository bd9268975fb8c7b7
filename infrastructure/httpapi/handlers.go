package httpapi

import (
	"errors"
	"net/http"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/guest"
	"invite-media/domain/storage"
	"invite-media/domain/upload"
	"invite-media/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type handlers struct {
	settings Settings
	log      zerolog.Logger
	uploader Uploader
	guests   GuestService
	gallery  storage.Gallery
}

type uploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

type searchRequest struct {
	SearchQuery string `json:"searchQuery"`
}

type rsvpRequest struct {
	Name      string `json:"name"`
	Attending bool   `json:"attending"`
	Guests    int    `json:"guests"`
	Message   string `json:"message"`
}

type galleryItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Kind         string    `json:"kind"`
	Size         int64     `json:"size"`
	CreatedTime  time.Time `json:"createdTime"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	ContentURL   string    `json:"contentUrl,omitempty"`
}

func kindOf(o storage.ObjectInfo) string {
	switch {
	case o.IsImage():
		return string(upload.KindImage)
	case o.IsVideo():
		return string(upload.KindVideo)
	default:
		return "other"
	}
}

func (h *handlers) config(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.AppConfig)
}

// upload accepts a multipart form with a "file" part and a "folderId" field
func (h *handlers) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.settings.MaxBodyBytes)

	fh, err := c.FormFile("file")
	folderID := c.PostForm("folderId")
	if err != nil || folderID == "" {
		if err != nil && isTooLarge(err) {
			abortWithError(c, err)
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Missing file or folderId"))
		return
	}

	payload, err := newFormFile(fh)
	if err != nil {
		abortWithError(c, failure.Wrap(failure.CodeInvalidInput, "Unable to read uploaded file", err))
		return
	}

	res, err := h.uploader.Upload(c.Request.Context(), folderID, payload)
	kind := string(res.Kind)
	if kind == "" {
		kind = "unknown"
	}
	if err != nil {
		metrics.RecordUpload(kind, "error", payload.Size())
		abortWithError(c, err)
		return
	}
	metrics.RecordUpload(kind, "success", payload.Size())

	c.JSON(http.StatusOK, uploadResponse{Success: true, ID: res.Object.ID, Name: res.Object.Name})
}

func (h *handlers) searchGuests(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	names, err := h.guests.Search(c.Request.Context(), req.SearchQuery)
	if err != nil {
		h.log.Error().Str("code", string(failure.From(err).Code)).Msg("guest search failed")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guests": names})
}

func (h *handlers) saveRSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	err := h.guests.SaveRSVP(c.Request.Context(), guest.RSVP{
		Name:       req.Name,
		Attending:  req.Attending,
		GuestCount: req.Guests,
		Message:    req.Message,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) listGallery(c *gin.Context) {
	objects, err := h.gallery.ListMedia(c.Request.Context(), h.settings.AppConfig.GalleryFolderID)
	if err != nil {
		h.log.Error().Str("code", string(failure.From(err).Code)).Msg("gallery listing failed")
		abortWithError(c, err)
		return
	}

	files := make([]galleryItem, 0, len(objects))
	for _, o := range objects {
		files = append(files, galleryItem{
			ID:           o.ID,
			Name:         o.Name,
			MimeType:     o.MimeType,
			Kind:         kindOf(o),
			Size:         o.Size,
			CreatedTime:  o.CreatedTime,
			ThumbnailURL: o.ThumbnailURL,
			ContentURL:   o.ContentURL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
