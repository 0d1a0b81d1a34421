package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
)

func newRecommendCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend PREFERENCE...",
		Short: "Suggest a drink for a free-text preference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				resp, err := a.Service.Recommend(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rec := resp.Recommendation
				if rec == nil {
					fmt.Fprintln(out, dimStyle.Render(resp.Message))
					return nil
				}
				fmt.Fprintf(out, "%s %s\n", titleStyle.Render(rec.Name), rec.Price.StringFixed(2))
				for _, matched := range rec.MatchedAttributes {
					fmt.Fprintln(out, "  - "+matched)
				}
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("confidence %.2f", rec.Confidence)))
				return nil
			})
		},
	}
}
