package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is a persisted quotation. Its number and items never change
// after save; the only remaining transition is delete.
type Quotation struct {
	ID              string
	Owner           string
	CustomerName    string
	QuotationNumber string
	Params          PriceParams
	Created         time.Time
	Items           LineItems
}

// Summarize totals the quotation's items.
func (q Quotation) Summarize() QuotationTotals {
	return q.Items.Summarize()
}

// QuotationDraft is an in-progress quotation. All item mutations go through
// one mutex so index-based edits cannot interleave.
type QuotationDraft struct {
	mu           sync.Mutex
	owner        string
	customerName string
	params       PriceParams
	items        LineItems
	saved        bool
}

// NewQuotationDraft starts an empty draft for owner.
func NewQuotationDraft(owner, customerName string, params PriceParams) (*QuotationDraft, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &QuotationDraft{
		owner:        owner,
		customerName: strings.TrimSpace(customerName),
		params:       params,
	}, nil
}

// Owner returns the opaque owner identifier.
func (d *QuotationDraft) Owner() string {
	return d.owner
}

// CustomerName returns the customer the draft is addressed to.
func (d *QuotationDraft) CustomerName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.customerName
}

// SetCustomerName changes the customer name of an unsaved draft.
func (d *QuotationDraft) SetCustomerName(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saved {
		return ErrQuotationSaved
	}
	d.customerName = strings.TrimSpace(name)
	return nil
}

// Params returns the draft's exchange and tax rate.
func (d *QuotationDraft) Params() PriceParams {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// UpdateParams replaces the exchange and tax rate. Existing prices are
// recomputed only by the next markup change or USD edit, so manual RMB
// overrides survive a rate change.
func (d *QuotationDraft) UpdateParams(params PriceParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saved {
		return ErrQuotationSaved
	}
	d.params = params
	return nil
}

// Saved reports whether the draft has been persisted.
func (d *QuotationDraft) Saved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved
}

// Items returns a copy of the draft's items in order.
func (d *QuotationDraft) Items() LineItems {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(LineItems, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of items.
func (d *QuotationDraft) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// NewLineItem snapshots entry and prices both forms with markup. The cut-off
// label becomes the specimen and the pack label doubles as the format.
func NewLineItem(entry CatalogEntry, form ProductForm, markup decimal.Decimal, params PriceParams) (LineItem, error) {
	if !form.Valid() {
		return LineItem{}, fmt.Errorf("%w: %q", ErrInvalidProductForm, form)
	}
	if form == FormBulk && !entry.HasBulk() {
		return LineItem{}, fmt.Errorf("%w: %q has no bulk price", ErrInvalidProductForm, entry.Product)
	}
	if markup.IsNegative() {
		return LineItem{}, fmt.Errorf("%w: %s", ErrInvalidMarkup, markup)
	}

	item := LineItem{
		Product:         entry.Product,
		Description:     entry.Description,
		Specimen:        entry.CutOff,
		Format:          entry.Pack,
		Pack:            entry.Pack,
		ProductType:     form,
		Quantity:        DefaultQuantity,
		BaseUSDFinished: entry.BaseUSDFinished,
		BaseRMBFinished: entry.BaseRMBFinished,
	}
	if entry.HasBulk() {
		item.BaseUSDBulk = entry.BaseUSDBulk
		item.BaseRMBBulk = entry.BaseRMBBulk
	}
	ApplyMarkup(&item, markup, params)
	return item, nil
}

// AddItem appends a priced snapshot of entry and returns it.
func (d *QuotationDraft) AddItem(entry CatalogEntry, form ProductForm, markup decimal.Decimal) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saved {
		return LineItem{}, ErrQuotationSaved
	}
	item, err := NewLineItem(entry, form, markup, d.params)
	if err != nil {
		return LineItem{}, err
	}
	d.items = append(d.items, item)
	return item, nil
}

// RemoveItem deletes the item at index, keeping the order of the rest.
func (d *QuotationDraft) RemoveItem(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMutable(index); err != nil {
		return err
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
	return nil
}

// UpdateQuantity sets the quantity of the item at index. Unit prices are
// not touched.
func (d *QuotationDraft) UpdateQuantity(index, quantity int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMutable(index); err != nil {
		return err
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	d.items[index].Quantity = quantity
	return nil
}

// UpdateMarkup reprices the item at index from its base prices.
func (d *QuotationDraft) UpdateMarkup(index int, markup decimal.Decimal) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMutable(index); err != nil {
		return LineItem{}, err
	}
	if markup.IsNegative() {
		return LineItem{}, fmt.Errorf("%w: %s", ErrInvalidMarkup, markup)
	}
	ApplyMarkup(&d.items[index], markup, d.params)
	return d.items[index], nil
}

// UpdateManualPrice overrides one final price of the item at index.
func (d *QuotationDraft) UpdateManualPrice(index int, form ProductForm, currency Currency, value decimal.Decimal) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMutable(index); err != nil {
		return LineItem{}, err
	}
	if value.IsNegative() {
		return LineItem{}, fmt.Errorf("%w: %s", ErrInvalidPrice, value)
	}
	if err := ApplyManualOverride(&d.items[index], form, currency, value, d.params); err != nil {
		return LineItem{}, err
	}
	return d.items[index], nil
}

// ManualPrice is a direct edit of one final price.
type ManualPrice struct {
	Form     ProductForm
	Currency Currency
	Value    decimal.Decimal
}

// ItemUpdate combines the edits UpdateItem can make to one item. Nil fields
// are left alone.
type ItemUpdate struct {
	Quantity *int
	Markup   *decimal.Decimal
	Manual   *ManualPrice
}

// UpdateItem applies quantity, markup and manual price edits to the item at
// index in that order, so a manual price wins over the markup-derived one.
// The edits are made on a copy and committed together: if any of them is
// rejected the item is left exactly as it was.
func (d *QuotationDraft) UpdateItem(index int, upd ItemUpdate) (LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMutable(index); err != nil {
		return LineItem{}, err
	}

	item := d.items[index]
	if upd.Quantity != nil {
		if *upd.Quantity <= 0 {
			return LineItem{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, *upd.Quantity)
		}
		item.Quantity = *upd.Quantity
	}
	if upd.Markup != nil {
		if upd.Markup.IsNegative() {
			return LineItem{}, fmt.Errorf("%w: %s", ErrInvalidMarkup, *upd.Markup)
		}
		ApplyMarkup(&item, *upd.Markup, d.params)
	}
	if mp := upd.Manual; mp != nil {
		if mp.Value.IsNegative() {
			return LineItem{}, fmt.Errorf("%w: %s", ErrInvalidPrice, mp.Value)
		}
		if err := ApplyManualOverride(&item, mp.Form, mp.Currency, mp.Value, d.params); err != nil {
			return LineItem{}, err
		}
	}

	d.items[index] = item
	return item, nil
}

// DraftView is a consistent copy of a draft's state.
type DraftView struct {
	CustomerName string
	Params       PriceParams
	Items        LineItems
	Totals       QuotationTotals
}

// View copies the draft's state under one lock so the totals always match
// the items.
func (d *QuotationDraft) View() DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make(LineItems, len(d.items))
	copy(items, d.items)
	return DraftView{
		CustomerName: d.customerName,
		Params:       d.params,
		Items:        items,
		Totals:       items.Summarize(),
	}
}

// Summarize totals the draft's items.
func (d *QuotationDraft) Summarize() QuotationTotals {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.items.Summarize()
}

// ExportPayload shapes the draft as it would be exported under number.
func (d *QuotationDraft) ExportPayload(number string, created time.Time) ExportPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return BuildExportPayload(Quotation{
		CustomerName:    d.customerName,
		QuotationNumber: number,
		Params:          d.params,
		Created:         created,
		Items:           d.items,
	})
}

// snapshot returns the data to persist. The caller must hold d.mu.
func (d *QuotationDraft) snapshot() Quotation {
	items := make(LineItems, len(d.items))
	copy(items, d.items)
	return Quotation{
		Owner:        d.owner,
		CustomerName: d.customerName,
		Params:       d.params,
		Items:        items,
	}
}

func (d *QuotationDraft) checkMutable(index int) error {
	if d.saved {
		return ErrQuotationSaved
	}
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("%w: index %d, %d items", ErrIndexOutOfRange, index, len(d.items))
	}
	return nil
}
