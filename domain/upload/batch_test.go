package upload

import (
	"errors"
	"sync"
	"testing"

	"invite-media/domain/failure"
)

func jpeg(name string, size int) *BytesPayload {
	return NewBytesPayload(name, "image/jpeg", make([]byte, size))
}

func TestBatch_Admit(t *testing.T) {
	b := NewBatch()

	admitted, rejected := b.Admit(
		jpeg("a.jpg", 10),
		NewBytesPayload("doc.pdf", "application/pdf", []byte("x")),
		NewBytesPayload("b.mp4", "video/mp4", []byte("v")),
	)

	if len(admitted) != 2 {
		t.Fatalf("expected 2 admitted, got %d", len(admitted))
	}
	if len(rejected) != 1 || rejected[0].Name != "doc.pdf" {
		t.Fatalf("expected doc.pdf rejected, got %+v", rejected)
	}
	if rejected[0].Err.Code != failure.CodeAdmission {
		t.Errorf("expected admission code, got %s", rejected[0].Err.Code)
	}

	items := b.Items()
	if len(items) != 2 || items[0].Name() != "a.jpg" || items[1].Name() != "b.mp4" {
		t.Fatalf("expected admission order preserved, got %v", items)
	}
	for _, item := range items {
		if item.Status != StatusPending {
			t.Errorf("expected pending, got %s", item.Status)
		}
		if item.ID == "" {
			t.Error("expected an id")
		}
	}
	if items[0].ID == items[1].ID {
		t.Error("expected unique ids")
	}
}

func TestBatch_RejectedLeavesBatchUnchanged(t *testing.T) {
	b := NewBatch()
	b.Admit(NewBytesPayload("x.exe", "", []byte("MZ")))
	if b.Len() != 0 {
		t.Errorf("expected empty batch, got %d items", b.Len())
	}
}

func TestBatch_StateMachine(t *testing.T) {
	b := NewBatch()
	admitted, _ := b.Admit(jpeg("a.jpg", 10))
	id := admitted[0].ID

	if err := b.Complete(id, Receipt{ID: "x"}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> success should be rejected, got %v", err)
	}
	if err := b.Start(id); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := b.Start(id); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("uploading -> uploading should be rejected, got %v", err)
	}
	if err := b.Complete(id, Receipt{ID: "abc", Name: "a.jpg"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := b.Fail(id, failure.New(failure.CodeNetwork, "late")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("success -> error should be rejected, got %v", err)
	}

	item, _ := b.Get(id)
	if item.Status != StatusSuccess || item.Receipt.ID != "abc" {
		t.Errorf("unexpected item state %+v", item)
	}
}

func TestBatch_PendingCanFailDirectly(t *testing.T) {
	b := NewBatch()
	admitted, _ := b.Admit(jpeg("a.jpg", 10))
	if err := b.Fail(admitted[0].ID, failure.New(failure.CodeConfiguration, "no folder")); err != nil {
		t.Fatalf("pending -> error: %v", err)
	}
	item, _ := b.Get(admitted[0].ID)
	if item.Err == nil || item.Err.Code != failure.CodeConfiguration {
		t.Errorf("expected configuration error recorded, got %+v", item.Err)
	}
}

func TestBatch_Remove(t *testing.T) {
	b := NewBatch()
	admitted, _ := b.Admit(jpeg("a.jpg", 10), jpeg("b.jpg", 10))

	if err := b.Start(admitted[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := b.Remove(admitted[0].ID); !errors.Is(err, ErrItemInFlight) {
		t.Errorf("expected in-flight error, got %v", err)
	}
	if err := b.Remove(admitted[1].ID); err != nil {
		t.Fatalf("remove pending: %v", err)
	}
	if err := b.Remove("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(b.Pending()) != 0 {
		t.Errorf("expected no pending items")
	}
}

func TestBatch_SetEffectiveRefusesVideo(t *testing.T) {
	b := NewBatch()
	admitted, _ := b.Admit(NewBytesPayload("v.mp4", "video/mp4", []byte("data")))
	err := b.SetEffective(admitted[0].ID, NewBytesPayload("v.mp4", "video/mp4", []byte("d")))
	if !errors.Is(err, ErrVideoNotCompressible) {
		t.Errorf("expected video refusal, got %v", err)
	}
	item, _ := b.Get(admitted[0].ID)
	if item.Compressed() {
		t.Error("video payload must stay unmodified")
	}
}

func TestBatch_ConcurrentUpdatesByID(t *testing.T) {
	b := NewBatch()
	var payloads []Payload
	for i := 0; i < 20; i++ {
		payloads = append(payloads, jpeg("p.jpg", 10))
	}
	admitted, _ := b.Admit(payloads...)

	var wg sync.WaitGroup
	for i, item := range admitted {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_ = b.Start(id)
			if i%2 == 0 {
				_ = b.Complete(id, Receipt{ID: id})
			} else {
				_ = b.Fail(id, failure.New(failure.CodeNetwork, "x"))
			}
		}(i, item.ID)
	}
	wg.Wait()

	for i, item := range b.Items() {
		want := StatusSuccess
		if i%2 == 1 {
			want = StatusError
		}
		if item.Status != want {
			t.Errorf("item %d: expected %s, got %s", i, want, item.Status)
		}
		if item.Status == StatusSuccess && item.Receipt.ID != item.ID {
			t.Errorf("item %d: receipt applied to the wrong item", i)
		}
	}
}
