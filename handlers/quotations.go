package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

type quotationResponse struct {
	ID              string                   `json:"id"`
	QuotationNumber string                   `json:"quotationNumber"`
	CustomerName    string                   `json:"customerName"`
	ExchangeRate    decimal.Decimal          `json:"exchangeRate"`
	TaxRate         decimal.Decimal          `json:"taxRate"`
	Created         time.Time                `json:"created"`
	Items           services.LineItems       `json:"items"`
	Totals          services.QuotationTotals `json:"totals"`
}

func newQuotationResponse(q *services.Quotation) quotationResponse {
	items := q.Items
	if items == nil {
		items = services.LineItems{}
	}
	return quotationResponse{
		ID:              q.ID,
		QuotationNumber: q.QuotationNumber,
		CustomerName:    q.CustomerName,
		ExchangeRate:    q.Params.ExchangeRate,
		TaxRate:         q.Params.TaxRate,
		Created:         q.Created,
		Items:           items,
		Totals:          q.Summarize(),
	}
}

// HandleQuotationList returns a handler that lists the requester's saved
// quotations, newest first.
func HandleQuotationList(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list, err := deps.Store.ListByOwner(e.Request.Context(), GetOwner(e.Request))
		if err != nil {
			return respondError(e, deps.Logger, "quotation list", err)
		}
		return e.JSON(http.StatusOK, list)
	}
}

// HandleQuotationGet returns a handler that shows one saved quotation.
func HandleQuotationGet(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q, err := deps.Store.Get(e.Request.Context(), GetOwner(e.Request), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, deps.Logger, "quotation get", err)
		}
		return e.JSON(http.StatusOK, newQuotationResponse(q))
	}
}

// HandleQuotationDelete returns a handler that removes a saved quotation
// together with its items.
func HandleQuotationDelete(deps *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := deps.Store.Delete(e.Request.Context(), GetOwner(e.Request), e.Request.PathValue("id")); err != nil {
			return respondError(e, deps.Logger, "quotation delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}
