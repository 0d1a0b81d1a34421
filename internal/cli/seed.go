package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/seed"
)

func newSeedCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo tea shop catalog into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				if err := seed.Apply(cmd.Context(), a.Repo); err != nil {
					return fmt.Errorf("seed %s store: %w", a.StoreKind(), err)
				}
				ingredients, products := seed.Counts()
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
					fmt.Sprintf("✓ seeded %d ingredients and %d products", ingredients, products)))
				return nil
			})
		},
	}
}
