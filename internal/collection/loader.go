package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Loader turns a Source into a canonical Dataset.
type Loader struct {
	Columns Columns
	Logger  *slog.Logger
	// Now stamps Dataset.LoadedAt and the dataset id. Defaults to time.Now.
	Now func() time.Time
}

// NewLoader creates a loader for the given column labels. Empty labels fall
// back to DefaultColumns.
func NewLoader(cols Columns, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Columns: cols.WithDefaults(),
		Logger:  logger.With(slog.String("component", "dataset_loader")),
		Now:     time.Now,
	}
}

// Load reads src with default settings. See Loader.Load.
func Load(ctx context.Context, src Source, cols Columns) (*Dataset, error) {
	return NewLoader(cols, nil).Load(ctx, src)
}

// Load reads the full source and builds a Dataset. It fails with a
// *SchemaError when a required column is absent. Unparseable masses become
// nil; rows without a usable date are dropped.
func (l *Loader) Load(ctx context.Context, src Source) (*Dataset, error) {
	start := l.now()

	table, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", src.Name(), err)
	}

	ds, err := l.Build(ctx, table)
	if err != nil {
		return nil, err
	}
	if ds.Source == "" {
		ds.Source = src.Name()
	}

	l.logger().InfoContext(ctx, "dataset loaded",
		slog.String("source", ds.Source),
		slog.String("dataset_id", ds.ID),
		slog.Int("records", len(ds.Records)),
		slog.Int("dropped", ds.Dropped),
		slog.Duration("duration", l.now().Sub(start)))
	return ds, nil
}

// Build canonicalizes an already read table.
func (l *Loader) Build(ctx context.Context, table *Table) (*Dataset, error) {
	cols := l.Columns.WithDefaults()

	index := make(map[string]int, len(table.Header))
	present := make([]string, 0, len(table.Header))
	for i, name := range table.Header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
			present = append(present, name)
		}
	}

	var missing []string
	for _, name := range cols.Names() {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Expected: cols.Names()}
	}

	chipCol, dateCol, massCol := index[cols.Identifier], index[cols.Date], index[cols.Mass]
	dates := DateParser{Serials: table.SerialDates, Date1904: table.Date1904}

	ds := &Dataset{
		Source:  table.Name,
		Columns: cols,
		Present: present,
		Records: make([]Record, 0, len(table.Rows)),
	}

	for i := range table.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blankCells(table.Rows[i]) {
			continue
		}

		row := table.HeaderRow + i + 1
		date, ok := dates.Parse(table.Cell(i, dateCol))
		if !ok {
			ds.Dropped++
			l.logger().DebugContext(ctx, "row dropped: unusable date",
				slog.Int("row", row),
				slog.Any("value", table.Cell(i, dateCol)))
			continue
		}

		ds.Records = append(ds.Records, Record{
			ChipID: NormalizeChipValue(table.Cell(i, chipCol)),
			Date:   date,
			MassKg: ParseMassValue(table.Cell(i, massCol)),
			Row:    row,
		})
	}

	ds.LoadedAt = l.now()
	ds.ID = ulid.MustNew(ulid.Timestamp(ds.LoadedAt), ulid.DefaultEntropy()).String()
	return ds, nil
}

func (l *Loader) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func blankCells(row []any) bool {
	for _, v := range row {
		switch x := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(x) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
