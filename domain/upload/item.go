package upload

import (
	"fmt"
	"time"

	"invite-media/domain/failure"
)

// Kind is the media kind of an upload item
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Status is the position of an item in the upload state machine
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError
}

// transitions lists the forward moves allowed from each status.
// pending -> error covers failures detected before any network call.
var transitions = map[Status][]Status{
	StatusPending:   {StatusUploading, StatusError},
	StatusUploading: {StatusSuccess, StatusError},
}

// CanTransition reports whether from -> to is a forward move
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Receipt identifies the object created by a successful upload
type Receipt struct {
	ID   string
	Name string
}

// Item is one user-selected file. Items are owned by a Batch; callers
// receive copies.
type Item struct {
	ID         string
	Kind       Kind
	Original   Payload
	Effective  Payload
	Status     Status
	Err        *failure.Error
	Receipt    Receipt
	AdmittedAt time.Time
}

// Name returns the filename of the original payload
func (i Item) Name() string {
	return i.Original.Name()
}

// SizeBytes returns the size of the payload that will be transmitted
func (i Item) SizeBytes() int64 {
	return i.Effective.Size()
}

// Compressed reports whether the effective payload differs from the original
func (i Item) Compressed() bool {
	return i.Effective != i.Original
}

// NewItem admits a payload: it runs the admission checks and returns a
// pending item with a fresh id.
func NewItem(p Payload) (*Item, error) {
	kind, err := Check(p.Name(), p.MimeType(), p.Size())
	if err != nil {
		return nil, err
	}
	return &Item{
		ID:         NewID(),
		Kind:       kind,
		Original:   p,
		Effective:  p,
		Status:     StatusPending,
		AdmittedAt: time.Now(),
	}, nil
}

func (i *Item) transition(to Status) error {
	if !CanTransition(i.Status, to) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, i.Status, to, i.ID)
	}
	i.Status = to
	return nil
}
