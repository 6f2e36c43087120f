package collection

import (
	"fmt"
	"sort"
	"time"
)

// Lookup returns every record of the chip named by input, in load order,
// together with the observed date span. The input is normalized the same
// way identifiers are at load time.
func Lookup(ds *Dataset, input string) (*Match, error) {
	chip := NormalizeChip(input)
	if chip == "" || ds == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, input)
	}

	m := &Match{ChipID: chip}
	for _, rec := range ds.Records {
		if rec.ChipID != chip {
			continue
		}
		if len(m.Records) == 0 {
			m.Span = Span{From: rec.Date, To: rec.Date}
		} else {
			m.Span = m.Span.extend(rec.Date)
		}
		m.Records = append(m.Records, rec)
	}
	if len(m.Records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	return m, nil
}

// Query filters the chip's records to the inclusive range in and computes
// totals. Unset bounds default to the chip's observed span. Records without
// a mass count as pickups but add nothing to the total.
func Query(ds *Dataset, in QueryInput) (*Result, error) {
	m, err := Lookup(ds, in.ChipID)
	if err != nil {
		return nil, err
	}
	return m.Query(in.From, in.To, in.Rate)
}

// Query applies a date range to an existing match.
func (m *Match) Query(from, to time.Time, rate *float64) (*Result, error) {
	if from.IsZero() {
		from = m.Span.From
	}
	if to.IsZero() {
		to = m.Span.To
	}
	from, to = calendarDate(from), calendarDate(to)

	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s",
			ErrInvalidRange, from.Format(DateLayout), to.Format(DateLayout))
	}

	res := &Result{
		ChipID:    m.ChipID,
		Available: m.Span,
		From:      from,
		To:        to,
	}
	window := Span{From: from, To: to}
	for _, rec := range m.Records {
		if !window.Contains(rec.Date) {
			continue
		}
		res.Records = append(res.Records, rec)
		if rec.MassKg == nil {
			res.MissingMass++
			continue
		}
		res.TotalMassKg += *rec.MassKg
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("%w: %s..%s",
			ErrEmptyRange, from.Format(DateLayout), to.Format(DateLayout))
	}

	res.PickupCount = len(res.Records)
	if rate != nil {
		r := *rate
		amount := res.TotalMassKg * r
		res.Rate = &r
		res.EstimatedAmount = &amount
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		return res.Records[i].Date.After(res.Records[j].Date)
	})
	return res, nil
}
