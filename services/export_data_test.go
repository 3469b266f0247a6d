package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuotation(t *testing.T) Quotation {
	t.Helper()
	params := DefaultPriceParams()
	finished, err := NewLineItem(finishedOnlyEntry(), FormFinished, DefaultMarkup, params)
	require.NoError(t, err)
	bulk, err := NewLineItem(bulkEntry(), FormBulk, dec("0.125"), params)
	require.NoError(t, err)
	bulk.Specimen = ""
	bulk.Format = ""
	bulk.Quantity = 3

	return Quotation{
		ID:              "q1",
		Owner:           "owner-1",
		CustomerName:    "Acme Stone",
		QuotationNumber: "QT-1700000000000",
		Params:          params,
		Created:         time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Items:           LineItems{finished, bulk},
	}
}

func TestBuildExportPayload(t *testing.T) {
	payload := BuildExportPayload(sampleQuotation(t))

	assert.Equal(t, "QT-1700000000000", payload.QuotationNumber)
	assert.Equal(t, "Acme Stone", payload.CustomerName)
	assert.Equal(t, "2025-01-15", payload.CreatedDate)
	require.Len(t, payload.Items, 2)

	first := payload.Items[0]
	assert.Equal(t, 1, first.No)
	assert.Equal(t, "600x600", first.Specimen)
	assert.Equal(t, "10%", first.MarkupPercentage)
	assert.False(t, first.FinalUSDBulk.Valid)

	second := payload.Items[1]
	assert.Equal(t, 2, second.No)
	assert.Equal(t, LabelPlaceholder, second.Specimen)
	assert.Equal(t, LabelPlaceholder, second.Format)
	assert.Equal(t, "Crate", second.Pack)
	assert.Equal(t, "12.5%", second.MarkupPercentage)
	assert.Equal(t, 3, second.Quantity)
	assert.True(t, second.FinalUSDBulk.Valid)

	assert.True(t, payload.Totals.FinishedTotalUSD.Equal(dec("447.5")))
	assert.True(t, payload.Totals.BulkTotalUSD.Equal(dec("270")))
}

func TestExportRow_MarshalJSON(t *testing.T) {
	payload := BuildExportPayload(sampleQuotation(t))
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded struct {
		QuotationNumber string                       `json:"quotationNumber"`
		CustomerName    string                       `json:"customerName"`
		CreatedDate     string                       `json:"createdDate"`
		Items           []map[string]json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Items, 2)

	t.Run("absent bulk is null", func(t *testing.T) {
		row := decoded.Items[0]
		require.Contains(t, row, "finalUsdBulk")
		require.Contains(t, row, "finalRmbBulk")
		assert.Equal(t, "null", string(row["finalUsdBulk"]))
		assert.Equal(t, "null", string(row["finalRmbBulk"]))
	})

	t.Run("prices are plain numbers", func(t *testing.T) {
		row := decoded.Items[0]
		assert.Equal(t, "110", string(row["finalUsdFinished"]))
		assert.Equal(t, "882.53", string(row["finalRmbFinished"]))
		assert.Equal(t, `"10%"`, string(row["markupPercentage"]))
	})

	t.Run("present bulk is a number", func(t *testing.T) {
		row := decoded.Items[1]
		assert.Equal(t, "90", string(row["finalUsdBulk"]))
		assert.Equal(t, `"bulk"`, string(row["productType"]))
	})

	assert.NotContains(t, string(raw), "exchangeRate")
}

func TestNullNumber(t *testing.T) {
	assert.Nil(t, nullNumber(decimal.NullDecimal{}))
	n := nullNumber(decimal.NewNullDecimal(dec("1.50")))
	require.NotNil(t, n)
	assert.Equal(t, "1.5", n.String())
}
