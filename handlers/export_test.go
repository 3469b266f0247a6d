package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "Acme Stone Co", "Acme-Stone-Co"},
		{"slashes to hyphens", "path/to/file", "path-to-file"},
		{"backslashes", "path\\to\\file", "path-to-file"},
		{"colons", "file:name", "file-name"},
		{"mixed", "A / B \\ C : D", "A---B---C---D"},
		{"no special chars", "simple", "simple"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.input))
		})
	}
}

func TestExportFilename(t *testing.T) {
	data := services.ExportPayload{QuotationNumber: "QT-1700000000000", CustomerName: "Acme Stone"}
	assert.Equal(t, "Quotation_QT-1700000000000_Acme-Stone.xlsx", exportFilename(data, "xlsx"))

	data.CustomerName = ""
	assert.Equal(t, "Quotation_QT-1700000000000.pdf", exportFilename(data, "pdf"))
}

// savedQuotation stores a one-item quotation for testOwner and returns its id.
func savedQuotation(t *testing.T, app core.App, deps *Deps) string {
	t.Helper()
	entry := testhelpers.CreateTestCatalogEntry(t, app, "Carrara White", "100", "")
	d := createDraft(t, deps, `{"customerName":"Acme Stone"}`)
	addItem(t, deps, d.ID, fmt.Sprintf(`{"catalogEntryId":%q}`, entry.Id))

	req := newOwnedRequest(http.MethodPost, "/x", "", testOwner, "id", d.ID)
	rec := serve(t, nil, HandleDraftSave(deps), req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var q quotationResponse
	decodeBody(t, rec, &q)
	return q.ID
}

func TestHandleQuotationExport_JSON(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	req := newOwnedRequest(http.MethodGet, "/x", "", testOwner, "id", id)
	rec := serve(t, nil, HandleQuotationExport(deps), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "Acme Stone", raw["customerName"])
	items := raw["items"].([]any)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, float64(1), row["no"])
	assert.Equal(t, float64(110), row["finalUsdFinished"])
	assert.Nil(t, row["finalUsdBulk"])
	assert.Equal(t, "10%", row["markupPercentage"])
}

func TestHandleQuotationExportExcel(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	req := newOwnedRequest(http.MethodGet, "/x", "", testOwner, "id", id)
	rec := serve(t, nil, HandleQuotationExportExcel(deps), req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `_Acme-Stone.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	product, err := f.GetCellValue("Quotation", "B7")
	require.NoError(t, err)
	assert.Equal(t, "Carrara White", product)
}

func TestHandleQuotationExportPDF(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	req := newOwnedRequest(http.MethodGet, "/x", "", testOwner, "id", id)
	rec := serve(t, nil, HandleQuotationExportPDF(deps), req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestHandleQuotationExport_OtherOwner(t *testing.T) {
	app, deps := newTestDeps(t)
	id := savedQuotation(t, app, deps)

	exports := map[string]func(*core.RequestEvent) error{
		"json":  HandleQuotationExport(deps),
		"excel": HandleQuotationExportExcel(deps),
		"pdf":   HandleQuotationExportPDF(deps),
	}
	for name, h := range exports {
		t.Run(name, func(t *testing.T) {
			req := newOwnedRequest(http.MethodGet, "/x", "", "intruder", "id", id)
			rec := serve(t, nil, h, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}
