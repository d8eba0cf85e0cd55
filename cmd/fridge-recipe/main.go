package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fridge-recipe",
		Short:        "Fridge inventory and dinner suggestion service",
		Long:         "fridge-recipe 管理冷藏庫食材與晚餐紀錄，並透過 LLM 推薦不重複的晚餐食譜。",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSuggestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
