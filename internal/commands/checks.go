package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newChecksCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Query the reported-checks API",
	}

	cmd.AddCommand(
		newChecksEntitiesCommand(opts),
		newChecksLookupCommand(opts),
	)
	return cmd
}

func newChecksEntitiesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List financial entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			entities, err := client.Entities(cmd.Context())
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), entities, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "CODE\tNAME")
				for _, e := range entities {
					fmt.Fprintf(tw, "%d\t%s\n", e.Code, e.Name)
				}
			})
		},
	}
}

func newChecksLookupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <entity-code> <check-number>",
		Short: "Look up a reported check",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityCode, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entity code %q", args[0])
			}
			checkNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid check number %q", args[1])
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			check, err := client.Check(cmd.Context(), entityCode, checkNumber)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), check, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Check:\t%d\n", check.Number)
				fmt.Fprintf(tw, "Entity:\t%s\n", check.EntityName)
				fmt.Fprintf(tw, "Reported:\t%t\n", check.Reported)
				fmt.Fprintf(tw, "Processed:\t%s\n", check.ProcessedAt)
				for _, d := range check.Details {
					fmt.Fprintf(tw, "Detail:\tbranch %d, account %d, %s\n", d.Branch, d.Account, d.Cause)
				}
			})
		},
	}
}
