package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRatesCommand(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show the exchange-rate board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				var err error
				day, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			board, err := client.Rates(cmd.Context(), day)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), board, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Date:\t%s\n", board.Date)
				fmt.Fprintln(tw, "CODE\tDESCRIPTION\tRATE\tPASS RATE")
				for _, d := range board.Details {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.CurrencyCode, d.Description, fmtValue(d.Rate), fmtValue(d.PassRate))
				}
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Board date (YYYY-MM-DD, default latest)")

	cmd.AddCommand(newRatesEvolutionCommand(opts))
	return cmd
}

func newRatesEvolutionCommand(opts *options) *cobra.Command {
	var (
		fromArg string
		toArg   string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "evolution <currency-code>",
		Short: "Show the quotation history for one currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from, to time.Time
			var err error
			if fromArg != "" {
				if from, err = time.Parse("2006-01-02", fromArg); err != nil {
					return fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", fromArg)
				}
			}
			if toArg != "" {
				if to, err = time.Parse("2006-01-02", toArg); err != nil {
					return fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", toArg)
				}
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			quotes, err := client.CurrencyEvolution(cmd.Context(), args[0], from, to, limit, offset)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), quotes, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "DATE\tRATE\tPASS RATE")
				for _, q := range quotes {
					for _, d := range q.Details {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Date, fmtValue(d.Rate), fmtValue(d.PassRate))
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&fromArg, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toArg, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (10-1000, 0 = API default)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")
	return cmd
}
