// Package services provides quotation pricing, aggregation, persistence and
// export for the quotation desk.
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quotation-level defaults used when the caller does not supply rates.
var (
	DefaultExchangeRate = decimal.RequireFromString("7.1")
	DefaultTaxRate      = decimal.RequireFromString("0.13")
	DefaultMarkup       = decimal.RequireFromString("0.10")
)

// PriceParams are the quotation-level financial parameters that turn a USD
// price into an RMB price.
type PriceParams struct {
	ExchangeRate decimal.Decimal
	TaxRate      decimal.Decimal
}

// DefaultPriceParams returns the standard exchange and tax rate.
func DefaultPriceParams() PriceParams {
	return PriceParams{ExchangeRate: DefaultExchangeRate, TaxRate: DefaultTaxRate}
}

// Validate rejects a non-positive exchange rate or a negative tax rate.
func (p PriceParams) Validate() error {
	if !p.ExchangeRate.IsPositive() || p.TaxRate.IsNegative() {
		return fmt.Errorf("%w: exchange rate %s, tax rate %s", ErrInvalidRate, p.ExchangeRate, p.TaxRate)
	}
	return nil
}

// rmbFactor is exchangeRate * (1 + taxRate).
func (p PriceParams) rmbFactor() decimal.Decimal {
	return p.ExchangeRate.Mul(decimal.NewFromInt(1).Add(p.TaxRate))
}

// ToRMB converts a final USD price to its final RMB price.
func (p PriceParams) ToRMB(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(p.rmbFactor())
}

// DerivedPrice is the customer-facing price pair for one product form.
type DerivedPrice struct {
	FinalUSD decimal.Decimal
	FinalRMB decimal.Decimal
}

// DerivePrice applies markup, currency conversion and tax to a base USD cost:
//
//	finalUsd = baseUsd * (1 + markup)
//	finalRmb = finalUsd * exchangeRate * (1 + taxRate)
//
// No rounding is applied; callers format at display or export time.
// Inputs are not range-checked here.
func DerivePrice(baseUSD, markup decimal.Decimal, params PriceParams) DerivedPrice {
	finalUSD := baseUSD.Mul(decimal.NewFromInt(1).Add(markup))
	return DerivedPrice{
		FinalUSD: finalUSD,
		FinalRMB: params.ToRMB(finalUSD),
	}
}

// ApplyMarkup stores markup on the item and recomputes the final prices of
// both forms from their base prices, discarding any manual override.
func ApplyMarkup(item *LineItem, markup decimal.Decimal, params PriceParams) {
	item.MarkupPercentage = markup

	finished := DerivePrice(item.BaseUSDFinished, markup, params)
	item.FinalUSDFinished = finished.FinalUSD
	item.FinalRMBFinished = finished.FinalRMB

	if item.HasBulk() {
		bulk := DerivePrice(item.BaseUSDBulk.Decimal, markup, params)
		item.FinalUSDBulk = decimal.NewNullDecimal(bulk.FinalUSD)
		item.FinalRMBBulk = decimal.NewNullDecimal(bulk.FinalRMB)
	} else {
		item.FinalUSDBulk = decimal.NullDecimal{}
		item.FinalRMBBulk = decimal.NullDecimal{}
	}
}

// ApplyManualOverride sets a final price directly. Editing USD recomputes
// the RMB price of the same form; editing RMB leaves USD untouched, so the
// pair stays inconsistent until the next USD edit or ApplyMarkup.
func ApplyManualOverride(item *LineItem, form ProductForm, currency Currency, value decimal.Decimal, params PriceParams) error {
	switch form {
	case FormFinished:
	case FormBulk:
		if !item.HasBulk() {
			return fmt.Errorf("%w: %q has no bulk price", ErrInvalidProductForm, item.Product)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProductForm, form)
	}

	switch currency {
	case CurrencyUSD:
		rmb := params.ToRMB(value)
		if form == FormBulk {
			item.FinalUSDBulk = decimal.NewNullDecimal(value)
			item.FinalRMBBulk = decimal.NewNullDecimal(rmb)
		} else {
			item.FinalUSDFinished = value
			item.FinalRMBFinished = rmb
		}
	case CurrencyRMB:
		if form == FormBulk {
			item.FinalRMBBulk = decimal.NewNullDecimal(value)
		} else {
			item.FinalRMBFinished = value
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return nil
}
