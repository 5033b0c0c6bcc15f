package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "marketmind",
	Short: "MarketMind - technical and news sentiment signal synthesis",
	Long: `MarketMind fuses a technical indicator pipeline over daily or intraday bars
with a sentiment score from deduplicated multi-source news headlines into a
short-horizon price estimate, range and confidence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
