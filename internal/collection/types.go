package collection

import (
	"time"
)

// Default column labels of the municipal export this service was built for.
const (
	DefaultIdentifierColumn = "Číslo čipu"
	DefaultDateColumn       = "Dátum zvozu"
	DefaultMassColumn       = "Počet kg odpadu"
)

// DateLayout is the canonical textual form of a collection date.
const DateLayout = "2006-01-02"

// Columns names the three required columns of the source table.
type Columns struct {
	Identifier string
	Date       string
	Mass       string
}

// DefaultColumns returns the labels used when configuration names none.
func DefaultColumns() Columns {
	return Columns{
		Identifier: DefaultIdentifierColumn,
		Date:       DefaultDateColumn,
		Mass:       DefaultMassColumn,
	}
}

// WithDefaults fills empty labels from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Identifier == "" {
		c.Identifier = d.Identifier
	}
	if c.Date == "" {
		c.Date = d.Date
	}
	if c.Mass == "" {
		c.Mass = d.Mass
	}
	return c
}

// Names returns the labels in identifier, date, mass order.
func (c Columns) Names() []string {
	return []string{c.Identifier, c.Date, c.Mass}
}

// Record is one canonical pickup.
type Record struct {
	ChipID string
	// Date is a calendar date at midnight UTC.
	Date time.Time
	// MassKg is nil when the source value could not be parsed.
	MassKg *float64
	// Row is the 1-based row of the source table, header included.
	Row int
}

// HasMass reports whether the record carries a usable mass.
func (r Record) HasMass() bool {
	return r.MassKg != nil
}

// Dataset is the canonical, date-valid set of pickups built by Load.
// It must not be modified after construction.
type Dataset struct {
	ID       string
	Source   string
	Columns  Columns
	Present  []string
	Records  []Record
	Dropped  int
	LoadedAt time.Time
}

// Len returns the number of retained records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Summary describes a dataset for diagnostics.
type Summary struct {
	Records     int
	Dropped     int
	Chips       int
	MissingMass int
	Span        Span
	TotalMassKg float64
}

// Summarize computes dataset-wide statistics.
func (d *Dataset) Summarize() Summary {
	s := Summary{}
	if d == nil {
		return s
	}
	s.Records = len(d.Records)
	s.Dropped = d.Dropped

	chips := make(map[string]struct{})
	for i, rec := range d.Records {
		chips[rec.ChipID] = struct{}{}
		if rec.MassKg == nil {
			s.MissingMass++
		} else {
			s.TotalMassKg += *rec.MassKg
		}
		if i == 0 {
			s.Span = Span{From: rec.Date, To: rec.Date}
			continue
		}
		s.Span = s.Span.extend(rec.Date)
	}
	s.Chips = len(chips)
	return s
}

// Span is an inclusive range of calendar dates.
type Span struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the span, bounds included.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.From) && !t.After(s.To)
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s.From.IsZero() && s.To.IsZero()
}

func (s Span) extend(t time.Time) Span {
	if t.Before(s.From) {
		s.From = t
	}
	if t.After(s.To) {
		s.To = t
	}
	return s
}

// QueryInput carries the caller's request. Zero From/To default to the
// chip's observed span. Rate, when set, enables the monetary estimate.
type QueryInput struct {
	ChipID string
	From   time.Time
	To     time.Time
	Rate   *float64
}

// Match is the result of Lookup: every record of one chip, in load order.
type Match struct {
	ChipID  string
	Records []Record
	Span    Span
}

// Result is the aggregate answer to a Query.
type Result struct {
	ChipID string
	// Records are sorted by date, newest first; ties keep load order.
	Records     []Record
	TotalMassKg float64
	PickupCount int
	// MissingMass counts records in range whose mass was unparseable.
	MissingMass     int
	EstimatedAmount *float64
	Rate            *float64
	Available       Span
	From            time.Time
	To              time.Time
}
