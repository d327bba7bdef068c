package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/equity-report/internal/fetcher"
	"github.com/sells-group/equity-report/internal/tiger"
)

var (
	fetchProducts []string
	fetchProtocol string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download Census cartographic boundary shapefiles",
	Long:  "Downloads the state, county and AIANNH cartographic boundary ZIPs over https or ftp and extracts them under data.raw_dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchProtocol != "" {
			cfg.Fetch.Protocol = fetchProtocol
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		var products []tiger.Product
		for _, name := range fetchProducts {
			p, ok := tiger.ProductByName(name)
			if !ok {
				return eris.Errorf("fetch: unknown product %q", name)
			}
			products = append(products, p)
		}

		httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			RatePerSec: cfg.Fetch.RatePerSec,
		})
		ftpF := fetcher.NewFTPFetcher(fetcher.FTPOptions{})

		paths, err := tiger.FetchAll(cmd.Context(), httpF, ftpF, tiger.FetchOptions{
			Year:        cfg.Fetch.Year,
			Resolution:  cfg.Fetch.Resolution,
			Protocol:    cfg.Fetch.Protocol,
			DestDir:     cfg.Data.RawDir,
			Concurrency: cfg.Fetch.Concurrency,
			Products:    products,
		})
		if err != nil {
			return err
		}

		names := make([]string, 0, len(paths))
		for name := range paths {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s\n", name, paths[name])
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchProducts, "products", nil, "products to fetch: state, county, aiannh (default all)")
	fetchCmd.Flags().StringVar(&fetchProtocol, "protocol", "", "https or ftp (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
