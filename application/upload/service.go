package upload

import (
	"context"
	"fmt"
	"io"

	"invite-media/domain/failure"
	"invite-media/domain/upload"
)

// FolderSource resolves the destination folder for uploads
type FolderSource interface {
	UploadFolderID(ctx context.Context) (string, error)
}

// StaticFolder is a FolderSource with a fixed folder id
type StaticFolder string

func (f StaticFolder) UploadFolderID(ctx context.Context) (string, error) {
	return string(f), nil
}

// Service is the client-side ingestion pipeline: admission, then
// compression and transmission through the scheduler.
type Service struct {
	batch     *upload.Batch
	scheduler *Scheduler
	folders   FolderSource
	output    io.Writer
}

// NewService creates a pipeline over a fresh batch
func NewService(transport upload.Transport, folders FolderSource, output io.Writer, opts ...SchedulerOption) *Service {
	if output == nil {
		output = io.Discard
	}
	batch := upload.NewBatch()
	opts = append([]SchedulerOption{WithOutput(output)}, opts...)
	return &Service{
		batch:     batch,
		scheduler: NewScheduler(batch, transport, opts...),
		folders:   folders,
		output:    output,
	}
}

// Batch exposes the staged items
func (s *Service) Batch() *upload.Batch {
	return s.batch
}

// Admit stages payloads. Each rejection is reported on its own and does not
// affect the other files.
func (s *Service) Admit(payloads ...upload.Payload) ([]upload.Item, []upload.Rejection) {
	admitted, rejected := s.batch.Admit(payloads...)
	for _, r := range rejected {
		fmt.Fprintf(s.output, "Skipped: %s\n", r.Err.Message)
	}
	return admitted, rejected
}

// Remove drops a staged item so it is excluded from future runs
func (s *Service) Remove(id string) error {
	return s.batch.Remove(id)
}

// Upload sends every pending item and reports a single summary
func (s *Service) Upload(ctx context.Context) (Summary, error) {
	folderID, err := s.folders.UploadFolderID(ctx)
	if err != nil {
		fe := failure.From(err)
		if fe.Code != failure.CodeConfiguration {
			fe = failure.Wrap(failure.CodeConfiguration, "could not resolve the upload folder", err)
		}
		// an unresolvable folder is treated like an empty one
		summary, _ := s.scheduler.Run(ctx, "")
		return summary, fe
	}

	return s.scheduler.Run(ctx, folderID)
}
