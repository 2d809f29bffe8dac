package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bcra-go/bcra/pkg/bcra"
)

type seriesFlags struct {
	from   string
	to     string
	limit  int
	offset int
	latest bool
}

func (f *seriesFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.from, "from", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "End date (YYYY-MM-DD)")
	fs.IntVar(&f.limit, "limit", 0, "Page size (10-3000, 0 = API default)")
	fs.IntVar(&f.offset, "offset", 0, "Results to skip")
	fs.BoolVar(&f.latest, "latest", false, "Print only the most recent observation")
}

func (f *seriesFlags) seriesOptions() (bcra.SeriesOptions, error) {
	opts := bcra.SeriesOptions{Limit: f.limit, Offset: f.offset}

	var err error
	if f.from != "" {
		if opts.From, err = time.Parse("2006-01-02", f.from); err != nil {
			return opts, fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", f.from)
		}
	}
	if f.to != "" {
		if opts.To, err = time.Parse("2006-01-02", f.to); err != nil {
			return opts, fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", f.to)
		}
	}
	return opts, nil
}

func newSeriesCommand(opts *options) *cobra.Command {
	flags := &seriesFlags{}

	cmd := &cobra.Command{
		Use:   "series <variable-id>",
		Short: "Fetch observations for one monetary series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid variable id %q", args[0])
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			if flags.latest {
				point, err := client.LatestValue(cmd.Context(), id)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), point, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "DATE\tVALUE")
					fmt.Fprintf(tw, "%s\t%s\n", point.Date, fmtValue(point.Value))
				})
			}

			seriesOpts, err := flags.seriesOptions()
			if err != nil {
				return err
			}

			page, err := client.VariableData(cmd.Context(), id, seriesOpts)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), page, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "DATE\tVALUE")
				for _, p := range page.Results {
					fmt.Fprintf(tw, "%s\t%s\n", p.Date, fmtValue(p.Value))
				}
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
