package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wastelookup/internal/collection"
	"wastelookup/internal/exporter"
	transport "wastelookup/internal/transport/http"
)

type queryFlags struct {
	from     string
	to       string
	rate     float64
	estimate bool
	output   string
}

func newQueryCmd(opts *options) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query <chip>",
		Short: "Total the pickups of a chip in a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, qf, args[0])
		},
	}

	cmd.Flags().StringVar(&qf.from, "from", "", "First day, YYYY-MM-DD (default: first pickup)")
	cmd.Flags().StringVar(&qf.to, "to", "", "Last day, YYYY-MM-DD (default: last pickup)")
	cmd.Flags().Float64Var(&qf.rate, "rate", 0, "Price per kg for the estimate (overrides config)")
	cmd.Flags().BoolVarP(&qf.estimate, "estimate", "e", false, "Include the estimate at the configured price")
	cmd.Flags().StringVarP(&qf.output, "output", "o", "", "Write the pickup listing as CSV to this file")
	return cmd
}

func runQuery(cmd *cobra.Command, opts *options, qf *queryFlags, chip string) error {
	if err := opts.validateFormat("text", "json", "csv"); err != nil {
		return err
	}

	in := collection.QueryInput{ChipID: chip}
	var err error
	if qf.from != "" {
		if in.From, err = collection.ParseDay(qf.from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	if qf.to != "" {
		if in.To, err = collection.ParseDay(qf.to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}

	svc, _, err := opts.openService(cmd)
	if err != nil {
		return err
	}

	switch {
	case cmd.Flags().Changed("rate"):
		if qf.rate < 0 {
			return fmt.Errorf("--rate must not be negative")
		}
		rate := qf.rate
		in.Rate = &rate
	case qf.estimate:
		in.Rate = svc.DefaultRate()
	}

	res, err := svc.Query(cmd.Context(), in)
	if err != nil {
		return userError(err)
	}

	if qf.output != "" {
		w := exporter.NewCSVWriter(nil)
		if err := w.WriteFile(qf.output, res, exporter.DefaultWriteOptions()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		return writeJSON(out, transport.NewResultResponse(res))
	case "csv":
		return exporter.NewCSVWriter(nil).WriteListing(out, res, exporter.WriteOptions{Headers: exporter.DefaultHeaders})
	default:
		return writeResultText(out, res)
	}
}

// writeResultText prints the result the way residents see it in the web form.
func writeResultText(out io.Writer, res *collection.Result) error {
	fmt.Fprintf(out, "Čip: %s\n", res.ChipID)
	fmt.Fprintf(out, "Obdobie: %s .. %s\n", res.From.Format(collection.DateLayout), res.To.Format(collection.DateLayout))
	fmt.Fprintf(out, "Spolu: %.2f kg\n", res.TotalMassKg)
	fmt.Fprintf(out, "Počet zvozov v období: %d\n", res.PickupCount)
	if res.MissingMass > 0 {
		fmt.Fprintf(out, "Záznamy bez hmotnosti: %d\n", res.MissingMass)
	}
	if res.EstimatedAmount != nil {
		fmt.Fprintf(out, "Sadzba: %.2f € / kg\n", *res.Rate)
		fmt.Fprintf(out, "Predbežná suma: %.2f €\n", *res.EstimatedAmount)
	}

	fmt.Fprintln(out, "Detailné záznamy:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", collection.DefaultDateColumn, collection.DefaultMassColumn)
	for _, rec := range res.Records {
		fmt.Fprintf(tw, "%s\t%s\n", rec.Date.Format(collection.DateLayout), exporter.FormatMass(rec.MassKg, false))
	}
	return tw.Flush()
}
