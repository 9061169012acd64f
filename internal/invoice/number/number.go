// Package number formats sequential invoice numbers.
package number

import "fmt"

// Build renders an invoice number as PREFIX-YEAR-NNNN, e.g. INV-2025-0007.
// The counter keeps growing past 9999; the padding just stops applying.
func Build(prefix string, year int, counter int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, counter)
}
