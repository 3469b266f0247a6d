package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// CatalogEntry is one priced product of the catalog. A zero or absent bulk
// price means the product has no bulk form.
type CatalogEntry struct {
	ID              string              `json:"id"`
	Product         string              `json:"product"`
	Description     string              `json:"description"`
	Pack            string              `json:"pack"`
	CutOff          string              `json:"cutOff"`
	BaseUSDFinished decimal.Decimal     `json:"baseUsdFinished"`
	BaseRMBFinished decimal.Decimal     `json:"baseRmbFinished"`
	BaseUSDBulk     decimal.NullDecimal `json:"baseUsdBulk"`
	BaseRMBBulk     decimal.NullDecimal `json:"baseRmbBulk"`
}

// HasBulk reports whether the entry offers a bulk form.
func (c CatalogEntry) HasBulk() bool {
	return c.BaseUSDBulk.Valid && !c.BaseUSDBulk.Decimal.IsZero()
}

// Validate checks the fields the quotation engine depends on.
func (c CatalogEntry) Validate() error {
	if strings.TrimSpace(c.Product) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidEntry)
	}
	if c.BaseUSDFinished.IsNegative() || c.BaseRMBFinished.IsNegative() {
		return fmt.Errorf("%w: finished base price of %q", ErrInvalidPrice, c.Product)
	}
	if (c.BaseUSDBulk.Valid && c.BaseUSDBulk.Decimal.IsNegative()) ||
		(c.BaseRMBBulk.Valid && c.BaseRMBBulk.Decimal.IsNegative()) {
		return fmt.Errorf("%w: bulk base price of %q", ErrInvalidPrice, c.Product)
	}
	return nil
}

// CatalogQuery is a paged free-text catalog lookup. Offset is zero-based.
type CatalogQuery struct {
	Query  string
	Limit  int
	Offset int
}

// CatalogPage is one page of matches. Total counts the full match set.
type CatalogPage struct {
	Entries []CatalogEntry `json:"entries"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// PageCount returns ceil(Total / Limit).
func (p CatalogPage) PageCount() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// CatalogSearcher looks up catalog entries by free text.
type CatalogSearcher interface {
	Search(ctx context.Context, q CatalogQuery) (CatalogPage, error)
}

// CatalogRepository stores catalog entries in PocketBase and serves
// substring search over them.
type CatalogRepository struct {
	app             core.App
	defaultPageSize int
	maxPageSize     int
}

// NewCatalogRepository returns a repository with the given page size bounds.
func NewCatalogRepository(app core.App, defaultPageSize, maxPageSize int) *CatalogRepository {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &CatalogRepository{app: app, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

// Normalize clamps limit into [1, max] and offset to >= 0.
func (r *CatalogRepository) Normalize(q CatalogQuery) CatalogQuery {
	q.Query = strings.TrimSpace(q.Query)
	if q.Limit <= 0 {
		q.Limit = r.defaultPageSize
	}
	if q.Limit > r.maxPageSize {
		q.Limit = r.maxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// catalogFilter requires every whitespace-separated term to appear in at
// least one of product, description, cut-off or pack. An empty query
// matches everything.
func catalogFilter(query string) dbx.Expression {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil
	}
	exprs := make([]dbx.Expression, 0, len(terms))
	for _, term := range terms {
		exprs = append(exprs, dbx.Or(
			dbx.Like("product", term),
			dbx.Like("description", term),
			dbx.Like("cut_off", term),
			dbx.Like("pack", term),
		))
	}
	return dbx.And(exprs...)
}

// Search returns one page of entries ordered by product name.
func (r *CatalogRepository) Search(ctx context.Context, q CatalogQuery) (CatalogPage, error) {
	q = r.Normalize(q)
	filter := catalogFilter(q.Query)

	var total int64
	var err error
	if filter != nil {
		total, err = r.app.CountRecords(CatalogCollection, filter)
	} else {
		total, err = r.app.CountRecords(CatalogCollection)
	}
	if err != nil {
		return CatalogPage{}, fmt.Errorf("count catalog entries: %w", err)
	}

	query := r.app.RecordQuery(CatalogCollection).WithContext(ctx)
	if filter != nil {
		query = query.AndWhere(filter)
	}
	var records []*core.Record
	err = query.
		OrderBy("product ASC", "id ASC").
		Limit(int64(q.Limit)).
		Offset(int64(q.Offset)).
		All(&records)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("search catalog entries: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(records))
	for _, rec := range records {
		entry, err := catalogEntryFromRecord(rec)
		if err != nil {
			return CatalogPage{}, err
		}
		entries = append(entries, entry)
	}

	return CatalogPage{Entries: entries, Total: int(total), Limit: q.Limit, Offset: q.Offset}, nil
}

// Get returns the entry with the given id.
func (r *CatalogRepository) Get(ctx context.Context, id string) (CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return CatalogEntry{}, err
	}
	rec, err := findRecord(r.app, CatalogCollection, id)
	if err != nil {
		return CatalogEntry{}, err
	}
	return catalogEntryFromRecord(rec)
}

// Create validates and stores a new entry, returning it with its id.
func (r *CatalogRepository) Create(ctx context.Context, entry CatalogEntry) (CatalogEntry, error) {
	if err := entry.Validate(); err != nil {
		return CatalogEntry{}, err
	}
	col, err := r.app.FindCollectionByNameOrId(CatalogCollection)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("find %s collection: %w", CatalogCollection, err)
	}
	rec := core.NewRecord(col)
	fillCatalogRecord(rec, entry)
	if err := r.app.SaveWithContext(ctx, rec); err != nil {
		return CatalogEntry{}, fmt.Errorf("save catalog entry: %w", err)
	}
	entry.ID = rec.Id
	return entry, nil
}

// Update overwrites an existing entry. Saved quotations are unaffected
// because their items hold their own copy of the catalog fields.
func (r *CatalogRepository) Update(ctx context.Context, entry CatalogEntry) (CatalogEntry, error) {
	if err := entry.Validate(); err != nil {
		return CatalogEntry{}, err
	}
	rec, err := findRecord(r.app, CatalogCollection, entry.ID)
	if err != nil {
		return CatalogEntry{}, err
	}
	fillCatalogRecord(rec, entry)
	if err := r.app.SaveWithContext(ctx, rec); err != nil {
		return CatalogEntry{}, fmt.Errorf("save catalog entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

// Delete removes an entry.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	rec, err := findRecord(r.app, CatalogCollection, id)
	if err != nil {
		return err
	}
	if err := r.app.DeleteWithContext(ctx, rec); err != nil {
		return fmt.Errorf("delete catalog entry %s: %w", id, err)
	}
	return nil
}

func fillCatalogRecord(rec *core.Record, entry CatalogEntry) {
	rec.Set("product", strings.TrimSpace(entry.Product))
	rec.Set("description", strings.TrimSpace(entry.Description))
	rec.Set("pack", strings.TrimSpace(entry.Pack))
	rec.Set("cut_off", strings.TrimSpace(entry.CutOff))
	rec.Set("base_usd_finished", entry.BaseUSDFinished.String())
	rec.Set("base_rmb_finished", entry.BaseRMBFinished.String())
	setNullDecimal(rec, "base_usd_bulk", entry.BaseUSDBulk)
	setNullDecimal(rec, "base_rmb_bulk", entry.BaseRMBBulk)
}

func catalogEntryFromRecord(rec *core.Record) (CatalogEntry, error) {
	entry := CatalogEntry{
		ID:          rec.Id,
		Product:     rec.GetString("product"),
		Description: rec.GetString("description"),
		Pack:        rec.GetString("pack"),
		CutOff:      rec.GetString("cut_off"),
	}
	var err error
	if entry.BaseUSDFinished, err = decimalField(rec, "base_usd_finished"); err != nil {
		return CatalogEntry{}, err
	}
	if entry.BaseRMBFinished, err = decimalField(rec, "base_rmb_finished"); err != nil {
		return CatalogEntry{}, err
	}
	if entry.BaseUSDBulk, err = nullDecimalField(rec, "base_usd_bulk"); err != nil {
		return CatalogEntry{}, err
	}
	if entry.BaseRMBBulk, err = nullDecimalField(rec, "base_rmb_bulk"); err != nil {
		return CatalogEntry{}, err
	}
	return entry, nil
}
