package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVariablesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "variables",
		Short: "List monetary series and principal variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			vars, err := client.Variables(cmd.Context())
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), vars, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tDESCRIPTION\tCATEGORY\tDATE\tVALUE")
				for _, v := range vars {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						v.ID, v.Description, v.Category, v.Date, fmtValue(v.Value))
				}
			})
		},
	}
}

func newCurrenciesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List currencies tracked by the exchange statistics API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			currencies, err := client.Currencies(cmd.Context())
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), currencies, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CODE\tNAME")
				for _, c := range currencies {
					fmt.Fprintf(tw, "%s\t%s\n", c.Code, c.Name)
				}
			})
		},
	}
}
