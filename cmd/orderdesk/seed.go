package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/seed"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load restaurants, products, customers and orders from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			data, err := seed.Decode(f)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := seed.Apply(cmd.Context(), a.db.Store, a.admins, data, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d restaurants, %d admins, %d products, %d customers, %d orders\n",
				res.Restaurants, res.Admins, res.Products, res.Customers, res.Orders)
			return nil
		},
	})
}
