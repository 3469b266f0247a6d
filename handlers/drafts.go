package handlers

import (
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotedesk/services"
)

type draftResponse struct {
	ID           string                   `json:"id"`
	CustomerName string                   `json:"customerName"`
	ExchangeRate decimal.Decimal          `json:"exchangeRate"`
	TaxRate      decimal.Decimal          `json:"taxRate"`
	Items        services.LineItems       `json:"items"`
	Totals       services.QuotationTotals `json:"totals"`
}

func newDraftResponse(id string, d *services.QuotationDraft) draftResponse {
	view := d.View()
	return draftResponse{
		ID:           id,
		CustomerName: view.CustomerName,
		ExchangeRate: view.Params.ExchangeRate,
		TaxRate:      view.Params.TaxRate,
		Items:        view.Items,
		Totals:       view.Totals,
	}
}

type draftBody struct {
	CustomerName *string          `json:"customerName"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`
	TaxRate      *decimal.Decimal `json:"taxRate"`
}

// params overlays the body's rates on base.
func (b draftBody) params(base services.PriceParams) services.PriceParams {
	if b.ExchangeRate != nil {
		base.ExchangeRate = *b.ExchangeRate
	}
	if b.TaxRate != nil {
		base.TaxRate = *b.TaxRate
	}
	return base
}

type addItemBody struct {
	CatalogEntryID string               `json:"catalogEntryId"`
	ProductType    services.ProductForm `json:"productType"`
	Markup         *decimal.Decimal     `json:"markup"`
}

type manualPriceBody struct {
	Form     services.ProductForm `json:"form"`
	Currency services.Currency    `json:"currency"`
	Value    decimal.Decimal      `json:"value"`
}

type updateItemBody struct {
	Quantity    *int             `json:"quantity"`
	Markup      *decimal.Decimal `json:"markup"`
	ManualPrice *manualPriceBody `json:"manualPrice"`
}

// loadDraft resolves the {id} path value against the requester's drafts.
func loadDraft(e *core.RequestEvent, deps *Deps) (string, *services.QuotationDraft, error) {
	id := e.Request.PathValue("id")
	d, err := deps.Drafts.Get(GetOwner(e.Request), id)
	return id, d, err
}

func itemIndex(e *core.RequestEvent) (int, bool) {
	idx, err := strconv.Atoi(e.Request.PathValue("index"))
	if err != nil {
		return 0, false
	}
	return idx, true
}

// HandleDraftCreate returns a handler that opens an empty draft.
func HandleDraftCreate(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body draftBody
		if err := e.BindBody(&body); err != nil {
			return badRequest(e, "invalid draft body")
		}
		customer := ""
		if body.CustomerName != nil {
			customer = *body.CustomerName
		}

		id, d, err := deps.Drafts.Create(GetOwner(e.Request), customer, body.params(deps.Defaults))
		if err != nil {
			return respondError(e, deps.Logger, "draft create", err)
		}
		return e.JSON(http.StatusCreated, newDraftResponse(id, d))
	}
}

// HandleDraftGet returns a handler that shows a draft with live totals.
func HandleDraftGet(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft get", err)
		}
		return e.JSON(http.StatusOK, newDraftResponse(id, d))
	}
}

// HandleDraftUpdate returns a handler that changes the customer name or
// rates of a draft.
func HandleDraftUpdate(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft update", err)
		}
		var body draftBody
		if err := e.BindBody(&body); err != nil {
			return badRequest(e, "invalid draft body")
		}

		if body.ExchangeRate != nil || body.TaxRate != nil {
			if err := d.UpdateParams(body.params(d.Params())); err != nil {
				return respondError(e, deps.Logger, "draft update", err)
			}
		}
		if body.CustomerName != nil {
			if err := d.SetCustomerName(*body.CustomerName); err != nil {
				return respondError(e, deps.Logger, "draft update", err)
			}
		}
		return e.JSON(http.StatusOK, newDraftResponse(id, d))
	}
}

// HandleDraftDelete returns a handler that discards a draft.
func HandleDraftDelete(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := deps.Drafts.Delete(GetOwner(e.Request), e.Request.PathValue("id")); err != nil {
			return respondError(e, deps.Logger, "draft delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleDraftAddItem returns a handler that snapshots a catalog entry into
// the draft.
func HandleDraftAddItem(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft add item", err)
		}
		var body addItemBody
		if err := e.BindBody(&body); err != nil {
			return badRequest(e, "invalid item body")
		}
		if body.CatalogEntryID == "" {
			return badRequest(e, "catalogEntryId is required")
		}
		if body.ProductType == "" {
			body.ProductType = services.FormFinished
		}
		markup := deps.DefaultMarkup
		if body.Markup != nil {
			markup = *body.Markup
		}

		entry, err := deps.Catalog.Get(e.Request.Context(), body.CatalogEntryID)
		if err != nil {
			return respondError(e, deps.Logger, "draft add item", err)
		}
		if _, err := d.AddItem(entry, body.ProductType, markup); err != nil {
			return respondError(e, deps.Logger, "draft add item", err)
		}
		return e.JSON(http.StatusCreated, newDraftResponse(id, d))
	}
}

// HandleDraftUpdateItem returns a handler that edits the item at {index}.
// Quantity, markup and a manual price may be combined; they are applied
// together or not at all.
func HandleDraftUpdateItem(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft update item", err)
		}
		idx, ok := itemIndex(e)
		if !ok {
			return badRequest(e, "item index must be an integer")
		}
		var body updateItemBody
		if err := e.BindBody(&body); err != nil {
			return badRequest(e, "invalid item body")
		}

		upd := services.ItemUpdate{Quantity: body.Quantity, Markup: body.Markup}
		if mp := body.ManualPrice; mp != nil {
			upd.Manual = &services.ManualPrice{Form: mp.Form, Currency: mp.Currency, Value: mp.Value}
		}
		if _, err := d.UpdateItem(idx, upd); err != nil {
			return respondError(e, deps.Logger, "draft update item", err)
		}
		return e.JSON(http.StatusOK, newDraftResponse(id, d))
	}
}

// HandleDraftRemoveItem returns a handler that drops the item at {index}.
func HandleDraftRemoveItem(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft remove item", err)
		}
		idx, ok := itemIndex(e)
		if !ok {
			return badRequest(e, "item index must be an integer")
		}
		if err := d.RemoveItem(idx); err != nil {
			return respondError(e, deps.Logger, "draft remove item", err)
		}
		return e.JSON(http.StatusOK, newDraftResponse(id, d))
	}
}

// HandleDraftSave returns a handler that persists a draft as a numbered
// quotation and closes the draft.
func HandleDraftSave(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, d, err := loadDraft(e, deps)
		if err != nil {
			return respondError(e, deps.Logger, "draft save", err)
		}
		q, err := deps.Store.Save(e.Request.Context(), d)
		if err != nil {
			return respondError(e, deps.Logger, "draft save", err)
		}
		if err := deps.Drafts.Delete(GetOwner(e.Request), id); err != nil {
			deps.Logger.Warn("saved draft not discarded", zap.String("draft", id), zap.Error(err))
		}
		return e.JSON(http.StatusCreated, newQuotationResponse(q))
	}
}
