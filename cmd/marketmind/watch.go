package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchTickers []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Synthesize the watchlist on the configured schedule",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchTickers, "tickers", "t", nil, "tickers to watch (overrides watch.tickers)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(watchTickers) > 0 {
		rt.app.SetWatchlist(watchTickers)
	}
	if len(rt.app.GetWatchlist()) == 0 {
		return fmt.Errorf("watchlist is empty: set watch.tickers or --tickers")
	}

	rt.log.Info("starting MarketMind watcher", zap.Strings("tickers", rt.app.GetWatchlist()))

	if err := rt.app.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
