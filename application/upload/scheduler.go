package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/upload"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize is how many uploads run at once
	DefaultBatchSize = 3

	// DefaultTimeout bounds a single upload request
	DefaultTimeout = 5 * time.Minute
)

// Summary aggregates the outcome of one scheduler run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// String renders the summary for a notification
func (s Summary) String() string {
	if s.Failed == 0 {
		return fmt.Sprintf("%d uploaded", s.Succeeded)
	}
	return fmt.Sprintf("%d of %d uploaded", s.Succeeded, s.Total)
}

// Scheduler drives pending items through compression and transmission in
// fixed-size batches. Each batch settles completely before the next starts.
type Scheduler struct {
	batch      *upload.Batch
	transport  upload.Transport
	compressor *Compressor
	batchSize  int
	timeout    time.Duration
	output     io.Writer
	outputMu   sync.Mutex
}

// SchedulerOption is a functional option for configuring Scheduler
type SchedulerOption func(*Scheduler)

// WithCompressor enables image compression before transmission
func WithCompressor(c *Compressor) SchedulerOption {
	return func(s *Scheduler) {
		s.compressor = c
	}
}

// WithBatchSize sets the concurrency window
func WithBatchSize(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithTimeout sets the per-upload deadline
func WithTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithOutput sets where per-file progress is written
func WithOutput(w io.Writer) SchedulerOption {
	return func(s *Scheduler) {
		if w != nil {
			s.output = w
		}
	}
}

// NewScheduler creates a scheduler over a batch
func NewScheduler(batch *upload.Batch, transport upload.Transport, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		batch:     batch,
		transport: transport,
		batchSize: DefaultBatchSize,
		timeout:   DefaultTimeout,
		output:    io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run uploads every pending item to folderID. Items in other states are
// left untouched. Per-item failures are recorded on the item and never stop
// the run; a missing folder id fails every pending item without any network
// call and is returned once as a configuration error.
func (s *Scheduler) Run(ctx context.Context, folderID string) (Summary, error) {
	pending := s.batch.Pending()
	summary := Summary{Total: len(pending)}
	if len(pending) == 0 {
		return summary, nil
	}

	if strings.TrimSpace(folderID) == "" {
		cfgErr := failure.New(failure.CodeConfiguration, "upload folder is not configured")
		for _, item := range pending {
			if err := s.batch.Fail(item.ID, cfgErr); err == nil {
				summary.Failed++
			}
		}
		return summary, cfgErr
	}

	for start := 0; start < len(pending); start += s.batchSize {
		end := min(start+s.batchSize, len(pending))

		var g errgroup.Group
		for _, item := range pending[start:end] {
			g.Go(func() error {
				s.uploadItem(ctx, item, folderID)
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, item := range pending {
		current, ok := s.batch.Get(item.ID)
		if !ok {
			continue
		}
		switch current.Status {
		case upload.StatusSuccess:
			summary.Succeeded++
		case upload.StatusError:
			summary.Failed++
		}
	}
	return summary, nil
}

// uploadItem runs the per-item procedure. All status changes are applied
// by id.
func (s *Scheduler) uploadItem(ctx context.Context, item upload.Item, folderID string) {
	if err := s.batch.Start(item.ID); err != nil {
		// removed or already started elsewhere
		return
	}

	payload := item.Original
	if s.compressor != nil && item.Kind == upload.KindImage {
		payload = s.compressor.Compress(ctx, item.Kind, payload)
		if err := s.batch.SetEffective(item.ID, payload); err != nil {
			payload = item.Original
		}
	}

	if err := upload.CheckSize(payload.Name(), item.Kind, payload.Size()); err != nil {
		s.fail(item, failure.From(err))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	receipt, err := s.transport.Send(reqCtx, payload, folderID)
	if err != nil {
		s.fail(item, failure.From(err))
		return
	}

	if err := s.batch.Complete(item.ID, receipt); err != nil {
		return
	}
	s.printf("  ✓ %s (%s)\n", item.Name(), upload.FormatSize(payload.Size()))
}

func (s *Scheduler) fail(item upload.Item, cause *failure.Error) {
	if err := s.batch.Fail(item.ID, cause); err != nil {
		return
	}
	s.printf("  ✗ %s: %s\n", item.Name(), cause.Message)
}

func (s *Scheduler) printf(format string, args ...any) {
	s.outputMu.Lock()
	defer s.outputMu.Unlock()
	fmt.Fprintf(s.output, format, args...)
}
