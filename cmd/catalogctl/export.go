package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evora/catalog/internal/infrastructure/catalog"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the loaded catalog as a JSON document or a fallback dataset",
		Long: `export writes the catalog that was loaded. The json format is a product
document any source can serve; the fallback format is the embedded dataset layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			encode := catalog.Encode
			switch format {
			case "json":
			case "fallback":
				encode = catalog.EncodeFallback
			default:
				return fmt.Errorf("unknown export format %q, want json or fallback", format)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { err = errors.Join(err, f.Close()) }()
				w = f
			}
			return encode(w, c.services.Catalog.Catalog())
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or fallback")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
