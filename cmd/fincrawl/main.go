// Package main provides the fincrawl CLI: crawl jobs for Vietnamese market
// data, one subcommand per job family.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdataverse/fincrawl/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "fincrawl",
	Short: "Vietnamese financial market crawler",
	Long:  "fincrawl collects Vietnamese market indicators (deposit rates, FX, gold and silver prices, interbank rates) and a daily market-pulse news digest into PostgreSQL.",
}

func main() {
	observability.Init()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
