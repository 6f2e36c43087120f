package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wastelookup/internal/collection"
)

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the data source and summarize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts)
		},
	}
}

// inspectReport is the JSON form of inspect.
type inspectReport struct {
	Source      string   `json:"source"`
	DatasetID   string   `json:"dataset_id"`
	Columns     []string `json:"columns"`
	Records     int      `json:"records"`
	Dropped     int      `json:"dropped"`
	Chips       int      `json:"chips"`
	MissingMass int      `json:"missing_mass"`
	TotalMassKg float64  `json:"total_mass_kg"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
}

func runInspect(cmd *cobra.Command, opts *options) error {
	if err := opts.validateFormat("text", "json"); err != nil {
		return err
	}
	svc, _, err := opts.openService(cmd)
	if err != nil {
		return err
	}

	ds, err := svc.Dataset(cmd.Context())
	if err != nil {
		return userError(err)
	}

	sum := ds.Summarize()
	report := inspectReport{
		Source:      svc.SourceName(),
		DatasetID:   ds.ID,
		Columns:     ds.Present,
		Records:     sum.Records,
		Dropped:     sum.Dropped,
		Chips:       sum.Chips,
		MissingMass: sum.MissingMass,
		TotalMassKg: sum.TotalMassKg,
	}
	if !sum.Span.IsZero() {
		report.From = sum.Span.From.Format(collection.DateLayout)
		report.To = sum.Span.To.Format(collection.DateLayout)
	}

	if opts.format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return writeInspectText(cmd.OutOrStdout(), report)
}

func writeInspectText(out io.Writer, r inspectReport) error {
	_, err := fmt.Fprintf(out,
		"source:       %s\ndataset:      %s\nrecords:      %d\ndropped rows: %d\nchips:        %d\nmissing mass: %d\ntotal kg:     %.2f\nspan:         %s .. %s\n",
		r.Source, r.DatasetID, r.Records, r.Dropped, r.Chips, r.MissingMass, r.TotalMassKg, r.From, r.To)
	return err
}
