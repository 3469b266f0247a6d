package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

// QuotationSummary is one row of an owner's quotation list.
type QuotationSummary struct {
	ID              string          `json:"id"`
	QuotationNumber string          `json:"quotationNumber"`
	CustomerName    string          `json:"customerName"`
	Created         time.Time       `json:"created"`
	ItemCount       int             `json:"itemCount"`
	Totals          QuotationTotals `json:"totals"`
}

// QuotationStore persists quotations and their items in PocketBase.
type QuotationStore struct {
	app    core.App
	logger *zap.Logger
	now    func() time.Time
}

// NewQuotationStore returns a store backed by app.
func NewQuotationStore(app core.App, logger *zap.Logger) *QuotationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationStore{app: app, logger: logger, now: time.Now}
}

// Save persists the draft as a new quotation. The header and all items are
// written in one transaction; on any failure, including a cancelled ctx,
// nothing is stored and the draft stays editable. On success the draft is
// locked against further edits.
func (s *QuotationStore) Save(ctx context.Context, d *QuotationDraft) (*Quotation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saved {
		return nil, ErrQuotationSaved
	}
	if len(d.items) == 0 {
		return nil, ErrEmptyQuotation
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := d.snapshot()
	now := s.now()

	err := s.app.RunInTransaction(func(txApp core.App) error {
		quotations, err := txApp.FindCollectionByNameOrId(QuotationsCollection)
		if err != nil {
			return fmt.Errorf("find %s collection: %w", QuotationsCollection, err)
		}
		items, err := txApp.FindCollectionByNameOrId(QuotationItemsCollection)
		if err != nil {
			return fmt.Errorf("find %s collection: %w", QuotationItemsCollection, err)
		}

		number, err := GenerateQuotationNumber(txApp, now)
		if err != nil {
			return err
		}

		header := core.NewRecord(quotations)
		header.Set("owner", q.Owner)
		header.Set("customer_name", q.CustomerName)
		header.Set("quotation_number", number)
		header.Set("exchange_rate", q.Params.ExchangeRate.String())
		header.Set("tax_rate", q.Params.TaxRate.String())
		if err := txApp.SaveWithContext(ctx, header); err != nil {
			return fmt.Errorf("save quotation %s: %w", number, err)
		}

		for i, item := range q.Items {
			rec := core.NewRecord(items)
			rec.Set("quotation", header.Id)
			rec.Set("sort_order", i+1)
			fillItemRecord(rec, item)
			if err := txApp.SaveWithContext(ctx, rec); err != nil {
				return fmt.Errorf("save item %d of quotation %s: %w", i+1, number, err)
			}
		}

		q.ID = header.Id
		q.QuotationNumber = number
		q.Created = now
		if dt := header.GetDateTime("created"); !dt.IsZero() {
			q.Created = dt.Time()
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("quotation save rolled back",
			zap.String("owner", q.Owner),
			zap.Int("items", len(q.Items)),
			zap.Error(err))
		return nil, err
	}

	d.saved = true
	s.logger.Info("quotation saved",
		zap.String("id", q.ID),
		zap.String("number", q.QuotationNumber),
		zap.String("owner", q.Owner),
		zap.Int("items", len(q.Items)))
	return &q, nil
}

// Get loads a quotation with its items in order. Other owners get
// ErrUnauthorized.
func (s *QuotationStore) Get(ctx context.Context, owner, id string) (*Quotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, err := s.findOwned(s.app, owner, id)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(s.app, header.Id)
	if err != nil {
		return nil, err
	}
	q, err := quotationFromRecord(header)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return &q, nil
}

// ListByOwner returns the owner's quotations, newest first.
func (s *QuotationStore) ListByOwner(ctx context.Context, owner string) ([]QuotationSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	headers, err := s.app.FindRecordsByFilter(
		QuotationsCollection,
		"owner = {:owner}",
		"-created",
		0,
		0,
		dbx.Params{"owner": owner},
	)
	if err != nil {
		return nil, fmt.Errorf("list quotations of %s: %w", owner, err)
	}

	summaries := make([]QuotationSummary, 0, len(headers))
	for _, h := range headers {
		items, err := loadItems(s.app, h.Id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, QuotationSummary{
			ID:              h.Id,
			QuotationNumber: h.GetString("quotation_number"),
			CustomerName:    h.GetString("customer_name"),
			Created:         h.GetDateTime("created").Time(),
			ItemCount:       len(items),
			Totals:          items.Summarize(),
		})
	}
	return summaries, nil
}

// Delete removes a quotation and all of its items in one transaction,
// items first.
func (s *QuotationStore) Delete(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.app.RunInTransaction(func(txApp core.App) error {
		header, err := s.findOwned(txApp, owner, id)
		if err != nil {
			return err
		}
		items, err := txApp.FindRecordsByFilter(
			QuotationItemsCollection,
			"quotation = {:id}",
			"sort_order",
			0,
			0,
			dbx.Params{"id": header.Id},
		)
		if err != nil {
			return fmt.Errorf("find items of quotation %s: %w", id, err)
		}
		for _, item := range items {
			if err := txApp.DeleteWithContext(ctx, item); err != nil {
				return fmt.Errorf("delete item %s: %w", item.Id, err)
			}
		}
		if err := txApp.DeleteWithContext(ctx, header); err != nil {
			return fmt.Errorf("delete quotation %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("quotation deleted", zap.String("id", id), zap.String("owner", owner))
	return nil
}

func (s *QuotationStore) findOwned(app core.App, owner, id string) (*core.Record, error) {
	header, err := findRecord(app, QuotationsCollection, id)
	if err != nil {
		return nil, err
	}
	if header.GetString("owner") != owner {
		return nil, fmt.Errorf("quotation %s: %w", id, ErrUnauthorized)
	}
	return header, nil
}

func loadItems(app core.App, quotationID string) (LineItems, error) {
	records, err := app.FindRecordsByFilter(
		QuotationItemsCollection,
		"quotation = {:id}",
		"sort_order",
		0,
		0,
		dbx.Params{"id": quotationID},
	)
	if err != nil {
		return nil, fmt.Errorf("find items of quotation %s: %w", quotationID, err)
	}
	items := make(LineItems, 0, len(records))
	for _, rec := range records {
		item, err := lineItemFromRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func quotationFromRecord(rec *core.Record) (Quotation, error) {
	q := Quotation{
		ID:              rec.Id,
		Owner:           rec.GetString("owner"),
		CustomerName:    rec.GetString("customer_name"),
		QuotationNumber: rec.GetString("quotation_number"),
		Created:         rec.GetDateTime("created").Time(),
	}
	var err error
	if q.Params.ExchangeRate, err = decimalField(rec, "exchange_rate"); err != nil {
		return Quotation{}, err
	}
	if q.Params.TaxRate, err = decimalField(rec, "tax_rate"); err != nil {
		return Quotation{}, err
	}
	return q, nil
}

func fillItemRecord(rec *core.Record, item LineItem) {
	rec.Set("product", item.Product)
	rec.Set("description", item.Description)
	rec.Set("specimen", item.Specimen)
	rec.Set("format", item.Format)
	rec.Set("pack", item.Pack)
	rec.Set("product_type", string(item.ProductType))
	rec.Set("quantity", item.Quantity)
	rec.Set("markup_percentage", item.MarkupPercentage.String())
	rec.Set("base_usd_finished", item.BaseUSDFinished.String())
	rec.Set("base_rmb_finished", item.BaseRMBFinished.String())
	setNullDecimal(rec, "base_usd_bulk", item.BaseUSDBulk)
	setNullDecimal(rec, "base_rmb_bulk", item.BaseRMBBulk)
	rec.Set("final_usd_finished", item.FinalUSDFinished.String())
	rec.Set("final_rmb_finished", item.FinalRMBFinished.String())
	setNullDecimal(rec, "final_usd_bulk", item.FinalUSDBulk)
	setNullDecimal(rec, "final_rmb_bulk", item.FinalRMBBulk)
}

func lineItemFromRecord(rec *core.Record) (LineItem, error) {
	item := LineItem{
		Product:     rec.GetString("product"),
		Description: rec.GetString("description"),
		Specimen:    rec.GetString("specimen"),
		Format:      rec.GetString("format"),
		Pack:        rec.GetString("pack"),
		ProductType: ProductForm(rec.GetString("product_type")),
		Quantity:    rec.GetInt("quantity"),
	}

	var err error
	if item.MarkupPercentage, err = decimalField(rec, "markup_percentage"); err != nil {
		return LineItem{}, err
	}
	if item.BaseUSDFinished, err = decimalField(rec, "base_usd_finished"); err != nil {
		return LineItem{}, err
	}
	if item.BaseRMBFinished, err = decimalField(rec, "base_rmb_finished"); err != nil {
		return LineItem{}, err
	}
	if item.BaseUSDBulk, err = nullDecimalField(rec, "base_usd_bulk"); err != nil {
		return LineItem{}, err
	}
	if item.BaseRMBBulk, err = nullDecimalField(rec, "base_rmb_bulk"); err != nil {
		return LineItem{}, err
	}
	if item.FinalUSDFinished, err = decimalField(rec, "final_usd_finished"); err != nil {
		return LineItem{}, err
	}
	if item.FinalRMBFinished, err = decimalField(rec, "final_rmb_finished"); err != nil {
		return LineItem{}, err
	}
	if item.FinalUSDBulk, err = nullDecimalField(rec, "final_usd_bulk"); err != nil {
		return LineItem{}, err
	}
	if item.FinalRMBBulk, err = nullDecimalField(rec, "final_rmb_bulk"); err != nil {
		return LineItem{}, err
	}
	return item, nil
}
