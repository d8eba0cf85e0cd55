package main

import (
	"context"
	"encoding/json"

	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/pkg/common"

	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		count     int
		request   string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate dinner suggestions once and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer common.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if count == 0 {
				count = cfg.Suggestion.DefaultCount
			}
			res, err := a.suggestions.Generate(ctx, sessionID, recipe.SuggestionRequest{
				UserRequest: request,
				Count:       count,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of recipes (1-5, default from config)")
	cmd.Flags().StringVarP(&request, "request", "r", "", "free-text request, e.g. \"さっぱりしたもの\"")
	cmd.Flags().StringVar(&sessionID, "session", "cli", "suggestion memory key")
	return cmd
}
