package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evora/catalog/internal/domain"
	"github.com/evora/catalog/internal/usecase"
)

func (c *cli) compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Manage the side-by-side comparison set",
	}
	cmd.AddCommand(
		c.compareListCmd(),
		c.compareAddCmd(),
		c.compareRemoveCmd(),
		c.compareCandidatesCmd(),
	)
	return cmd
}

func (c *cli) compareListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the compared products and their specifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printComparison(cmd, c.services.Compare.Current())
			return nil
		},
	}
}

func (c *cli) compareAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <product id>...",
		Short: "Add products to the comparison set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				set, err := c.services.Compare.AddByID(cmd.Context(), domain.ProductID(id))
				if err != nil {
					return fmt.Errorf("add %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%d/%d)\n", id, set.Len(), set.Capacity())
			}
			return nil
		},
	}
}

func (c *cli) compareRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product id>...",
		Short: "Remove products from the comparison set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				set, err := c.services.Compare.Remove(cmd.Context(), domain.ProductID(id))
				if err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d/%d)\n", id, set.Len(), set.Capacity())
			}
			return nil
		},
	}
}

func (c *cli) compareCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <query>",
		Short: "Find products to add by name or brand",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := c.services.Compare.Current()
			products := c.services.Catalog.Candidates(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "no matching products")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tBRAND\tPRICE")
			for _, p := range products {
				marker := ""
				if current.Contains(p.ID) {
					marker = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, p.ID, p.Name, p.Brand, domain.FormatPrice(p.Price))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if current.Full() {
				fmt.Fprintf(out, "\ncomparison set is full (%d/%d)\n", current.Len(), current.Capacity())
			}
			return nil
		},
	}
}

func printComparison(cmd *cobra.Command, set domain.ComparisonSet) {
	out := cmd.OutOrStdout()
	if set.Len() == 0 {
		fmt.Fprintf(out, "comparison set is empty (0/%d)\n", set.Capacity())
		return
	}
	for i, view := range usecase.Render(set) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		p := view.Product
		fmt.Fprintf(out, "[%d] %s (%s) %s\n", i+1, p.Name, p.ID, domain.FormatPrice(p.Price))
		printSpecRows(out, view.Rows)
	}
	fmt.Fprintf(out, "\n%d/%d compared\n", set.Len(), set.Capacity())
}
