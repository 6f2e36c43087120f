package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMass(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{name: "dot decimal", in: "12.5", want: 12.5, wantOK: true},
		{name: "comma decimal", in: "12,5", want: 12.5, wantOK: true},
		{name: "comma with unit", in: "12,5 kg", want: 12.5, wantOK: true},
		{name: "comma with glued unit", in: "12,5kg", want: 12.5, wantOK: true},
		{name: "upper case unit", in: "12,5 KG", want: 12.5, wantOK: true},
		{name: "non-breaking space before unit", in: "12,5\u00a0kg", want: 12.5, wantOK: true},
		{name: "non-breaking thousands", in: "1\u00a0250,5", want: 1250.5, wantOK: true},
		{name: "surrounding whitespace", in: "  7 ", want: 7, wantOK: true},
		{name: "integer", in: "3", want: 3, wantOK: true},
		{name: "negative", in: "-1,5", want: -1.5, wantOK: true},
		{name: "empty", in: "", wantOK: false},
		{name: "only unit", in: "kg", wantOK: false},
		{name: "letters", in: "abc", wantOK: false},
		{name: "multiple separators", in: "1.234,5", wantOK: false},
		{name: "infinity", in: "inf", wantOK: false},
		{name: "nan", in: "NaN", wantOK: false},
		{name: "hex", in: "0x10", wantOK: false},
		{name: "other unit", in: "12 t", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMass(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseMass_EquivalentSpellings(t *testing.T) {
	for _, in := range []string{"12,5", "12.5", "12,5 kg", "12,5kg"} {
		got, ok := ParseMass(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, 12.5, got, "input %q", in)
	}
}

func TestParseMassValue(t *testing.T) {
	assert.Nil(t, ParseMassValue(nil))
	assert.Nil(t, ParseMassValue("abc"))
	assert.Nil(t, ParseMassValue(""))

	v := ParseMassValue(3.25)
	require.NotNil(t, v)
	assert.Equal(t, 3.25, *v)

	v = ParseMassValue(4)
	require.NotNil(t, v)
	assert.Equal(t, 4.0, *v)

	v = ParseMassValue("2,0 kg")
	require.NotNil(t, v)
	assert.Equal(t, 2.0, *v)
}
