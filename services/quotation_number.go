package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// QuotationNumberPrefix starts every quotation number.
const QuotationNumberPrefix = "QT-"

// formatQuotationNumber builds "QT-<unix millis>", or "QT-<unix millis>-<seq>"
// for seq >= 2 when the plain number is already taken.
func formatQuotationNumber(now time.Time, seq int) string {
	base := fmt.Sprintf("%s%d", QuotationNumberPrefix, now.UnixMilli())
	if seq < 2 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, seq)
}

// GenerateQuotationNumber returns the first free quotation number for now.
// Saves within the same millisecond get a "-2", "-3"... suffix; the unique
// index on quotation_number rejects anything that still collides.
func GenerateQuotationNumber(app core.App, now time.Time) (string, error) {
	base := formatQuotationNumber(now, 1)

	var taken []string
	err := app.DB().
		Select("quotation_number").
		From(QuotationsCollection).
		Where(dbx.Or(
			dbx.HashExp{"quotation_number": base},
			dbx.Like("quotation_number", base+"-").Match(false, true),
		)).
		Column(&taken)
	if err != nil {
		return "", fmt.Errorf("look up quotation numbers: %w", err)
	}

	used := make(map[string]bool, len(taken))
	for _, n := range taken {
		used[strings.TrimSpace(n)] = true
	}
	if !used[base] {
		return base, nil
	}
	for seq := 2; ; seq++ {
		candidate := formatQuotationNumber(now, seq)
		if !used[candidate] {
			return candidate, nil
		}
	}
}
