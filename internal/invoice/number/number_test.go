package number

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		year    int
		counter int64
		want    string
	}{
		{"pads to four digits", "INV", 2025, 7, "INV-2025-0007"},
		{"first invoice", "INV", 2025, 1, "INV-2025-0001"},
		{"custom prefix", "ACME", 2024, 42, "ACME-2024-0042"},
		{"grows past padding", "INV", 2025, 12345, "INV-2025-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.prefix, tt.year, tt.counter))
		})
	}
}
