package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"employee-directory/internal/app"
)

func newSeedCmd(o *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty record store with sample employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has data; nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d employees\n", n)
			return nil
		},
	}

	c.Flags().Int("count", 50, "number of employees to create")
	_ = o.v.BindPFlag("store.seed_count", c.Flags().Lookup("count"))
	return c
}
