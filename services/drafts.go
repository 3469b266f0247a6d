package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DraftBook keeps in-progress quotations in memory, keyed by a random id.
// Drafts are scoped to the owner that created them.
type DraftBook struct {
	mu     sync.RWMutex
	drafts map[string]*QuotationDraft
}

// NewDraftBook returns an empty book.
func NewDraftBook() *DraftBook {
	return &DraftBook{drafts: make(map[string]*QuotationDraft)}
}

// Create starts a new draft and returns its id.
func (b *DraftBook) Create(owner, customerName string, params PriceParams) (string, *QuotationDraft, error) {
	d, err := NewQuotationDraft(owner, customerName, params)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	b.mu.Lock()
	b.drafts[id] = d
	b.mu.Unlock()
	return id, d, nil
}

// Get returns the draft with id if owner created it.
func (b *DraftBook) Get(owner, id string) (*QuotationDraft, error) {
	b.mu.RLock()
	d, ok := b.drafts[id]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if d.Owner() != owner {
		return nil, fmt.Errorf("draft %s: %w", id, ErrUnauthorized)
	}
	return d, nil
}

// Delete discards the draft with id.
func (b *DraftBook) Delete(owner, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.drafts[id]
	if !ok {
		return fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if d.Owner() != owner {
		return fmt.Errorf("draft %s: %w", id, ErrUnauthorized)
	}
	delete(b.drafts, id)
	return nil
}

// Len returns the number of open drafts.
func (b *DraftBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.drafts)
}
