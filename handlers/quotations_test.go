package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestHandleQuotationList(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)
	testhelpers.CreateTestQuotationRecord(t, app, "someone-else", "QT-1")

	req := newOwnedRequest(http.MethodGet, "/api/quotedesk/quotations", "", testOwner)
	rec := serve(t, nil, HandleQuotationList(deps), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []services.QuotationSummary
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, 1, list[0].ItemCount)
	assert.Equal(t, "Acme Stone", list[0].CustomerName)
}

func TestHandleQuotationGet(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	req := newOwnedRequest(http.MethodGet, "/x", "", testOwner, "id", id)
	rec := serve(t, nil, HandleQuotationGet(deps), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var q quotationResponse
	decodeBody(t, rec, &q)
	assert.Equal(t, id, q.ID)
	require.Len(t, q.Items, 1)
	assert.Equal(t, "Carrara White", q.Items[0].Product)

	req = newOwnedRequest(http.MethodGet, "/x", "", "intruder", "id", id)
	rec = serve(t, nil, HandleQuotationGet(deps), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = newOwnedRequest(http.MethodGet, "/x", "", testOwner, "id", "missing")
	rec = serve(t, nil, HandleQuotationGet(deps), req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleQuotationDelete(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	req := newOwnedRequest(http.MethodDelete, "/x", "", "intruder", "id", id)
	rec := serve(t, nil, HandleQuotationDelete(deps), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = newOwnedRequest(http.MethodDelete, "/x", "", testOwner, "id", id)
	rec = serve(t, nil, HandleQuotationDelete(deps), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	remaining, err := app.CountRecords(services.QuotationItemsCollection)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}
