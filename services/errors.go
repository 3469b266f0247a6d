package services

import "errors"

// Quotation errors. All of them are recoverable and reported to the caller;
// wrap with fmt.Errorf("...: %w", err) to add context and test with errors.Is.
var (
	ErrInvalidProductForm = errors.New("product has no pricing for the requested form")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrIndexOutOfRange    = errors.New("line item index out of range")
	ErrEmptyQuotation     = errors.New("quotation must contain at least one item")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("not owned by the requesting user")

	ErrInvalidMarkup   = errors.New("markup must be zero or greater")
	ErrInvalidRate     = errors.New("exchange rate must be positive and tax rate zero or greater")
	ErrInvalidPrice    = errors.New("price must be zero or greater")
	ErrInvalidCurrency = errors.New("unknown currency")
	ErrQuotationSaved  = errors.New("quotation already saved")
	ErrInvalidEntry    = errors.New("invalid catalog entry")
)

// IsValidation reports whether err is a caller input problem rather than
// a storage or lookup failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidProductForm, ErrInvalidQuantity, ErrIndexOutOfRange, ErrEmptyQuotation,
		ErrInvalidMarkup, ErrInvalidRate, ErrInvalidPrice, ErrInvalidCurrency, ErrInvalidEntry,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
