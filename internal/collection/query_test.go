package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Scenario(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	res, err := Query(ds, QueryInput{
		ChipID: "000 111-222",
		From:   Day(2024, time.January, 1),
		To:     Day(2024, time.December, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, "000111222", res.ChipID)
	assert.Equal(t, 2, res.PickupCount)
	assert.InDelta(t, 5.5, res.TotalMassKg, 1e-9)
	assert.Nil(t, res.EstimatedAmount)
	require.Len(t, res.Records, 2)
	assert.Equal(t, Day(2024, time.February, 10), res.Records[0].Date)
	assert.Equal(t, Day(2024, time.January, 5), res.Records[1].Date)
	assert.Equal(t, Span{From: Day(2024, time.January, 5), To: Day(2024, time.February, 10)}, res.Available)
}

func TestQuery_Errors(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	tests := []struct {
		name    string
		in      QueryInput
		wantErr error
	}{
		{
			name: "inverted range",
			in: QueryInput{
				ChipID: "000111222",
				From:   Day(2024, time.March, 1),
				To:     Day(2024, time.January, 1),
			},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "unknown chip",
			in:      QueryInput{ChipID: "123123123"},
			wantErr: ErrNotFound,
		},
		{
			name:    "blank chip",
			in:      QueryInput{ChipID: " - "},
			wantErr: ErrNotFound,
		},
		{
			name: "range without pickups",
			in: QueryInput{
				ChipID: "000111222",
				From:   Day(2025, time.January, 1),
				To:     Day(2025, time.December, 31),
			},
			wantErr: ErrEmptyRange,
		},
		{
			// The range check precedes filtering even when no record would match.
			name: "inverted range outside data",
			in: QueryInput{
				ChipID: "000111222",
				From:   Day(2030, time.January, 2),
				To:     Day(2030, time.January, 1),
			},
			wantErr: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Query(ds, tt.in)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQuery_NilMassCountsButDoesNotSum(t *testing.T) {
	ds := mustLoad(t, NewMemorySource(testHeader,
		[]string{"777", "2024-01-01", "4"},
		[]string{"777", "2024-01-02", "???"},
		[]string{"777", "2024-01-03", "1,5 kg"},
	))

	res, err := Query(ds, QueryInput{ChipID: "777"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PickupCount)
	assert.Equal(t, 1, res.MissingMass)
	assert.InDelta(t, 5.5, res.TotalMassKg, 1e-9)
}

func TestQuery_DefaultsToAvailableSpan(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	res, err := Query(ds, QueryInput{ChipID: "000111222"})
	require.NoError(t, err)
	assert.Equal(t, Day(2024, time.January, 5), res.From)
	assert.Equal(t, Day(2024, time.February, 10), res.To)
	assert.Equal(t, 2, res.PickupCount)

	// Only the lower bound given.
	res, err = Query(ds, QueryInput{ChipID: "000111222", From: Day(2024, time.February, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PickupCount)
	assert.Equal(t, Day(2024, time.February, 10), res.To)
}

func TestQuery_InclusiveBounds(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	res, err := Query(ds, QueryInput{
		ChipID: "000111222",
		From:   Day(2024, time.January, 5),
		To:     Day(2024, time.January, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PickupCount)
	assert.InDelta(t, 3.5, res.TotalMassKg, 1e-9)

	// Bounds carrying a time of day are truncated to the date.
	res, err = Query(ds, QueryInput{
		ChipID: "000111222",
		From:   time.Date(2024, time.February, 10, 18, 0, 0, 0, time.UTC),
		To:     time.Date(2024, time.February, 10, 1, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PickupCount)
}

func TestQuery_Estimate(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	res, err := Query(ds, QueryInput{ChipID: "000111222", Rate: ptr(0.25)})
	require.NoError(t, err)
	require.NotNil(t, res.EstimatedAmount)
	assert.InDelta(t, 1.375, *res.EstimatedAmount, 1e-9)
	require.NotNil(t, res.Rate)
	assert.Equal(t, 0.25, *res.Rate)
}

func TestQuery_StableOrderOnTies(t *testing.T) {
	ds := mustLoad(t, NewMemorySource(testHeader,
		[]string{"1", "2024-01-01", "1"},
		[]string{"1", "2024-01-02", "2"},
		[]string{"1", "2024-01-02", "3"},
		[]string{"1", "2024-01-01", "4"},
	))

	res, err := Query(ds, QueryInput{ChipID: "1"})
	require.NoError(t, err)

	rows := make([]int, len(res.Records))
	for i, rec := range res.Records {
		rows[i] = rec.Row
	}
	assert.Equal(t, []int{3, 4, 2, 5}, rows)

	// The dataset itself is left in load order.
	assert.Equal(t, 2, ds.Records[0].Row)
}

func TestLookup(t *testing.T) {
	ds := mustLoad(t, scenarioSource())

	m, err := Lookup(ds, "000-111-222")
	require.NoError(t, err)
	assert.Equal(t, "000111222", m.ChipID)
	assert.Len(t, m.Records, 2)
	assert.Equal(t, Day(2024, time.January, 5), m.Span.From)
	assert.Equal(t, Day(2024, time.February, 10), m.Span.To)

	_, err = Lookup(nil, "000111222")
	assert.ErrorIs(t, err, ErrNotFound)
}
