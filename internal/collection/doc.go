// Package collection implements the waste-collection lookup core: it loads a
// loosely formatted table of pickups, canonicalizes chip identifiers, mass
// values and dates, and answers per-chip queries over an inclusive date range.
//
// # Loading
//
// A Source yields a raw Table (header plus untyped cells). Load validates that
// the configured identifier, date and mass columns exist, then canonicalizes
// every row:
//
//	chip  "000-123 456" → "000123456"      (NormalizeChip)
//	mass  "12,5 kg"     → 12.5             (ParseMass, nil when unparseable)
//	date  "05.01.2024"  → 2024-01-05 UTC   (ParseDate, row dropped when unparseable)
//
// The resulting Dataset is immutable. Cache memoizes it until Invalidate is
// called and swaps it atomically, so readers never see a half-built dataset.
//
// # Querying
//
// Lookup and Query are pure functions over a Dataset. Query reports
// ErrNotFound, ErrInvalidRange or ErrEmptyRange as distinct conditions so the
// caller can show the right message.
package collection
