package service

import (
	"strings"

	"github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/pkg/money"
)

type totals struct {
	Subtotal  float64
	VATAmount float64
	Total     float64
}

// computeTotals derives invoice amounts from line inputs. Line products are
// summed at full precision and the subtotal rounded once, so a thousand
// small lines do not accumulate per-line rounding drift.
func computeTotals(items []domain.ItemInput, vatRate float64) totals {
	var sum float64
	for _, it := range items {
		sum += it.Quantity * it.UnitPrice
	}

	subtotal := money.Round2(sum)
	vat := money.Tax(subtotal, vatRate)
	return totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     money.Round2(subtotal + vat),
	}
}

// validateItems checks line inputs. At least one line is required, each
// with a description, positive quantity and non-negative unit price.
func validateItems(items []domain.ItemInput) error {
	if len(items) == 0 {
		return domain.ErrNoItems
	}
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return domain.ErrInvalidItem
		}
		if it.Quantity <= 0 {
			return domain.ErrInvalidItem
		}
		if it.UnitPrice < 0 {
			return domain.ErrInvalidItem
		}
	}
	return nil
}
