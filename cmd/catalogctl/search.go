package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evora/catalog/internal/domain"
	"github.com/evora/catalog/internal/usecase"
)

func sortKeyNames() string {
	names := make([]string, len(domain.SortKeys))
	for i, k := range domain.SortKeys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		brands   []string
		minPrice float64
		maxPrice float64
		sortKey  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search products by keyword with brand, price and sort filters",
		Example: `  catalogctl search samsung washer
  catalogctl search --brand LG --brand Bosch --max 1500 --sort price-asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := usecase.QueryOptions{
				Text:   strings.Join(args, " "),
				Brands: brands,
				Sort:   sortKey,
			}
			if cmd.Flags().Changed("min") {
				opts.Min = &minPrice
			}
			if cmd.Flags().Changed("max") {
				opts.Max = &maxPrice
			}

			state, err := usecase.BuildQueryState(c.services.Catalog.Catalog(), opts)
			if err != nil {
				return err
			}
			results, err := c.services.Catalog.Search(cmd.Context(), state)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, results)
			}
			printProducts(out, results)
			fmt.Fprintf(out, "\n%d result(s)\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&brands, "brand", nil, "only show this brand, repeatable")
	cmd.Flags().Float64Var(&minPrice, "min", 0, "minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max", 0, "maximum price")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort order: "+sortKeyNames())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func (c *cli) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial query>",
		Short: "Show autocomplete suggestions for a partial query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions := c.services.Catalog.Suggest(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "no suggestions")
				return nil
			}
			for _, p := range suggestions {
				fmt.Fprintf(out, "%s\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	}
}

func (c *cli) facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the brands and price bounds available for filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			facets := c.services.Catalog.Facets()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Brands: %s\n", strings.Join(facets.Brands, ", "))
			if facets.Price == nil {
				fmt.Fprintln(out, "Price: n/a")
				return nil
			}
			fmt.Fprintf(out, "Price: %s - %s\n", domain.FormatPrice(facets.Price.Min), domain.FormatPrice(facets.Price.Max))
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product id>",
		Short: "Show one product with its specifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := c.services.Catalog.Product(domain.ProductID(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", product.Name, product.ID)
			fmt.Fprintf(out, "Brand: %s\nPrice: %s\n", product.Brand, domain.FormatPrice(product.Price))
			if product.Description != "" {
				fmt.Fprintf(out, "\n%s\n", product.Description)
			}
			fmt.Fprintln(out)
			set := domain.NewComparisonSet(1, []domain.Product{product})
			printSpecRows(out, usecase.Render(set)[0].Rows)
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report where the catalog was loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := c.services.Catalog.Status()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s\n", status.Source)
			fmt.Fprintf(out, "products: %d\n", status.Products)
			fmt.Fprintf(out, "degraded: %t\n", status.Degraded)
			if status.Notice != "" {
				fmt.Fprintf(out, "notice:   %s\n", status.Notice)
			}
			return nil
		},
	}
}
