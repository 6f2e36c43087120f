package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

var testHeader = []string{DefaultIdentifierColumn, DefaultDateColumn, DefaultMassColumn}

// scenarioSource is the two-pickup household used across the query tests.
func scenarioSource() *MemorySource {
	return NewMemorySource(testHeader,
		[]string{"000-111 222", "2024-01-05", "3,5"},
		[]string{"999888777", "2024-01-20", "10"},
		[]string{"000111222", "10.02.2024", "2,0 kg"},
	)
}

func mustLoad(t *testing.T, src Source) *Dataset {
	t.Helper()
	ds, err := Load(context.Background(), src, DefaultColumns())
	require.NoError(t, err)
	return ds
}

func ptr(f float64) *float64 { return &f }
