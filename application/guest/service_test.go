package guest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/guest"
)

type mockDirectory struct {
	names     []string
	readCalls int
	saved     []guest.RSVP
	err       error
}

func (m *mockDirectory) Names(ctx context.Context) ([]string, error) {
	m.readCalls++
	return m.names, m.err
}

func (m *mockDirectory) AppendRSVP(ctx context.Context, rsvp guest.RSVP) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, rsvp)
	return nil
}

func TestService_Search(t *testing.T) {
	many := make([]string, 0, 15)
	for i := range 15 {
		many = append(many, fmt.Sprintf("Guest %02d", i))
	}

	tests := []struct {
		name      string
		names     []string
		query     string
		want      []string
		wantReads int
	}{
		{
			name:      "case-insensitive substring",
			names:     []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"},
			query:     "LOVE",
			want:      []string{"Ada Lovelace"},
			wantReads: 1,
		},
		{
			name:      "single character is not searched",
			names:     []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"},
			query:     " a",
			want:      []string{},
			wantReads: 0,
		},
		{
			name:      "two characters are enough",
			names:     []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"},
			query:     "ac",
			want:      []string{"Ada Lovelace", "Grace Hopper"},
			wantReads: 1,
		},
		{
			name:      "results are capped",
			names:     many,
			query:     "guest",
			want:      many[:MaxResults],
			wantReads: 1,
		},
		{
			name:      "no match",
			names:     []string{"Ada Lovelace"},
			query:     "zz",
			want:      []string{},
			wantReads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &mockDirectory{names: tt.names}
			got, err := NewService(dir).Search(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dir.readCalls != tt.wantReads {
				t.Errorf("expected %d reads, got %d", tt.wantReads, dir.readCalls)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("result %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestService_Search_Error(t *testing.T) {
	dir := &mockDirectory{err: failure.New(failure.CodeStorage, "sheet unavailable")}
	if _, err := NewService(dir).Search(context.Background(), "ada"); !failure.Is(err, failure.CodeStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestService_SaveRSVP(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("stamps and trims", func(t *testing.T) {
		dir := &mockDirectory{}
		svc := NewService(dir)
		svc.now = func() time.Time { return fixed }

		err := svc.SaveRSVP(context.Background(), guest.RSVP{Name: "  Ada ", Attending: true, GuestCount: 1, Message: " yay "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(dir.saved) != 1 {
			t.Fatalf("expected 1 saved rsvp, got %d", len(dir.saved))
		}
		got := dir.saved[0]
		if got.Name != "Ada" || got.Message != "yay" || !got.SubmittedAt.Equal(fixed) {
			t.Errorf("unexpected rsvp %+v", got)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		dir := &mockDirectory{}
		err := NewService(dir).SaveRSVP(context.Background(), guest.RSVP{Name: "  "})
		if !failure.Is(err, failure.CodeInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
		if !errors.Is(err, guest.ErrNameRequired) {
			t.Errorf("expected ErrNameRequired, got %v", err)
		}
		if len(dir.saved) != 0 {
			t.Error("nothing should be saved")
		}
	})
}
