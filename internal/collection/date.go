package collection

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Accepted textual layouts, tried in order. Single-digit day and month
// tokens also accept zero-padded input. Slash dates are month-first.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339Nano,
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2.1.2006",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// "5. 1. 2024" is the common Slovak spelling of 5.1.2024.
var dottedSpaces = regexp.MustCompile(`\.\s+`)

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// DateParser coerces untyped cells to calendar dates.
type DateParser struct {
	// Serials enables reading numbers as Excel serial dates.
	Serials bool
	// Date1904 selects the 1904 date system for serials.
	Date1904 bool
}

// ParseDate coerces v using textual layouts only.
func ParseDate(v any) (time.Time, bool) {
	return DateParser{}.Parse(v)
}

// Parse returns the calendar date in v at midnight UTC. The time of day is
// discarded. It reports false when v holds no recognizable date.
func (p DateParser) Parse(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return calendarDate(x), true
	case float64:
		return p.serial(x)
	case int:
		return p.serial(float64(x))
	case int64:
		return p.serial(float64(x))
	case string:
		return p.parseString(x)
	default:
		return time.Time{}, false
	}
}

func (p DateParser) parseString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, nbsp, " "))
	if s == "" {
		return time.Time{}, false
	}
	if p.Serials {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return p.serial(f)
		}
	}

	s = dottedSpaces.ReplaceAllString(s, ".")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

func (p DateParser) serial(f float64) (time.Time, bool) {
	if !p.Serials || math.IsNaN(f) || f < 1 || f > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, p.Date1904)
	if err != nil {
		return time.Time{}, false
	}
	return calendarDate(t), true
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Day builds a calendar date. It is a convenience for callers and tests.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date as used on the API and CLI.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return calendarDate(t), nil
}
