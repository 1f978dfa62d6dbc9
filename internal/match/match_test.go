package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"billAddr_city", "billAddr_cty", 1},
		{"line_0_amount", "line_1_amount", 1},
		{"ABC", "abc", 3},
		{"größe", "grosse", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a), "symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("id", "id"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("abcd", "abce"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestClosest(t *testing.T) {
	columns := []string{"docNumber", "billAddr_city", "billAddr_line1", "totalAmt"}

	got, ok := Closest("billaddr_cty", columns)
	assert.True(t, ok)
	assert.Equal(t, "billAddr_city", got)

	got, ok = Closest("TOTALAMT", columns)
	assert.True(t, ok)
	assert.Equal(t, "totalAmt", got)

	_, ok = Closest("customerRef_value", columns)
	assert.False(t, ok)

	_, ok = Closest("id", nil)
	assert.False(t, ok)
}
