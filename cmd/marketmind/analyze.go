package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/marketmind/internal/core"
	"github.com/spf13/cobra"
)

var (
	analyzeRange     string
	analyzeSentiment int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "Synthesize a signal for one ticker and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRange, "range", "r", "1M", "lookback range: 1W, 1M or 1Y")
	analyzeCmd.Flags().IntVarP(&analyzeSentiment, "sentiment", "s", 0, "use this sentiment score instead of scoring headlines")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var override *int
	if cmd.Flags().Changed("sentiment") {
		override = &analyzeSentiment
	}

	res, err := rt.app.Analyze(ctx, args[0], core.ParseTimeframe(analyzeRange), override)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", args[0], err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
