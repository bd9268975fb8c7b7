package upload

import (
	"fmt"
	"sync"

	"invite-media/domain/failure"
)

// Batch is the set of items staged for upload, in admission order.
// All status changes go through the batch and are applied by item id.
type Batch struct {
	mu    sync.Mutex
	order []string
	items map[string]*Item
}

// NewBatch creates an empty batch
func NewBatch() *Batch {
	return &Batch{items: make(map[string]*Item)}
}

// Rejection pairs a refused payload with the reason
type Rejection struct {
	Name string
	Err  *failure.Error
}

// Admit runs admission on each payload. Accepted payloads are appended as
// pending items; rejected ones leave the batch unchanged.
func (b *Batch) Admit(payloads ...Payload) ([]Item, []Rejection) {
	var admitted []Item
	var rejected []Rejection
	for _, p := range payloads {
		item, err := NewItem(p)
		if err != nil {
			rejected = append(rejected, Rejection{Name: p.Name(), Err: failure.From(err)})
			continue
		}
		b.add(item)
		admitted = append(admitted, *item)
	}
	return admitted, rejected
}

func (b *Batch) add(item *Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = append(b.order, item.ID)
	b.items[item.ID] = item
}

// Remove drops an item. Items that are uploading cannot be removed.
func (b *Batch) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if item.Status == StatusUploading {
		return fmt.Errorf("%w: %s", ErrItemInFlight, id)
	}
	delete(b.items, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of an item
func (b *Batch) Get(id string) (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Items returns copies of all items in admission order
func (b *Batch) Items() []Item {
	return b.filter(func(Item) bool { return true })
}

// Pending returns copies of the pending items in admission order
func (b *Batch) Pending() []Item {
	return b.filter(func(i Item) bool { return i.Status == StatusPending })
}

// CountByStatus returns how many items are in the given status
func (b *Batch) CountByStatus(s Status) int {
	return len(b.filter(func(i Item) bool { return i.Status == s }))
}

// Len returns the number of items in the batch
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

func (b *Batch) filter(keep func(Item) bool) []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Item, 0, len(b.order))
	for _, id := range b.order {
		if item := b.items[id]; keep(*item) {
			out = append(out, *item)
		}
	}
	return out
}

// Start moves an item from pending to uploading
func (b *Batch) Start(id string) error {
	return b.update(id, func(item *Item) error {
		return item.transition(StatusUploading)
	})
}

// SetEffective replaces the payload that will be transmitted. Videos are
// always sent unmodified.
func (b *Batch) SetEffective(id string, p Payload) error {
	return b.update(id, func(item *Item) error {
		if item.Kind == KindVideo && p != item.Original {
			return fmt.Errorf("%w: %s", ErrVideoNotCompressible, id)
		}
		if item.Status.IsTerminal() {
			return fmt.Errorf("%w: payload change after %s", ErrInvalidTransition, item.Status)
		}
		item.Effective = p
		return nil
	})
}

// Complete marks an uploading item as succeeded
func (b *Batch) Complete(id string, r Receipt) error {
	return b.update(id, func(item *Item) error {
		if err := item.transition(StatusSuccess); err != nil {
			return err
		}
		item.Receipt = r
		return nil
	})
}

// Fail marks an item as failed
func (b *Batch) Fail(id string, cause *failure.Error) error {
	return b.update(id, func(item *Item) error {
		if err := item.transition(StatusError); err != nil {
			return err
		}
		item.Err = cause
		return nil
	})
}

func (b *Batch) update(id string, fn func(*Item) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return fn(item)
}
