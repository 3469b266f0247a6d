package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

const testOwner = "owner-1"

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app core.App, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newTestDeps wires handlers against a fresh app with flat test rates:
// exchange 7, tax 0.
func newTestDeps(t *testing.T) (*pocketbase.PocketBase, *Deps) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	catalog := services.NewCatalogRepository(app, 10, 50)
	return app, &Deps{
		Catalog:       catalog,
		Searcher:      catalog,
		Drafts:        services.NewDraftBook(),
		Store:         services.NewQuotationStore(app, zap.NewNop()),
		Defaults:      services.PriceParams{ExchangeRate: decimal.NewFromInt(7), TaxRate: decimal.Zero},
		DefaultMarkup: decimal.RequireFromString("0.1"),
		Logger:        zap.NewNop(),
	}
}

// newOwnedRequest builds a request as OwnerMiddleware would leave it.
func newOwnedRequest(method, target, body, owner string, pathValues ...string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), OwnerKey, owner))
}

// serve runs handler against req and returns the recorder.
func serve(t *testing.T, app core.App, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, handler(newTestRequestEvent(app, req, rec)))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}
