package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "000123456", want: "000123456"},
		{name: "surrounding whitespace", in: "  000123456\t", want: "000123456"},
		{name: "interior spaces", in: "000 123 456", want: "000123456"},
		{name: "hyphens", in: "000-123-456", want: "000123456"},
		{name: "mixed separators", in: " 000-123 456 ", want: "000123456"},
		{name: "case preserved", in: "ab-CD 12", want: "abCD12"},
		{name: "empty", in: "", want: ""},
		{name: "only separators", in: " - - ", want: ""},
		{name: "tab exposed after hyphen", in: "-\t123", want: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeChip(tt.in))
		})
	}
}

func TestNormalizeChip_Idempotent(t *testing.T) {
	inputs := []string{"000-111 222", " -\t9 9-", "A B-C", " 123 ", "x--y  z", ""}
	for _, in := range inputs {
		once := NormalizeChip(in)
		assert.Equal(t, once, NormalizeChip(once), "input %q", in)
	}
}

func TestNormalizeChip_EquivalentSpellings(t *testing.T) {
	spellings := []string{"000-111 222", "000111222", "000 111-222", "  000111222  ", "0-0-0-1-1-1-2-2-2"}
	for _, s := range spellings {
		assert.Equal(t, "000111222", NormalizeChip(s), "spelling %q", s)
	}
}

func TestNormalizeChipValue(t *testing.T) {
	assert.Equal(t, "", NormalizeChipValue(nil))
	assert.Equal(t, "123456", NormalizeChipValue("123 456"))
	assert.Equal(t, "123456", NormalizeChipValue(123456.0))
	assert.Equal(t, "42", NormalizeChipValue(42))
	assert.Equal(t, "12.5", NormalizeChipValue(12.5))
}
