package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/newthinker/marketmind/internal/app"
	"github.com/newthinker/marketmind/internal/cache"
	"github.com/newthinker/marketmind/internal/collector"
	"github.com/newthinker/marketmind/internal/collector/yahoo"
	"github.com/newthinker/marketmind/internal/config"
	"github.com/newthinker/marketmind/internal/core"
	"github.com/newthinker/marketmind/internal/engine"
	"github.com/newthinker/marketmind/internal/llm/factory"
	"github.com/newthinker/marketmind/internal/logger"
	"github.com/newthinker/marketmind/internal/meta"
	"github.com/newthinker/marketmind/internal/metrics"
	"github.com/newthinker/marketmind/internal/news"
	"github.com/newthinker/marketmind/internal/notifier"
	"github.com/newthinker/marketmind/internal/notifier/email"
	"github.com/newthinker/marketmind/internal/notifier/telegram"
	"github.com/newthinker/marketmind/internal/notifier/webhook"
	"github.com/newthinker/marketmind/internal/router"
	"github.com/newthinker/marketmind/internal/sentiment"
	"github.com/newthinker/marketmind/internal/series"
	"github.com/newthinker/marketmind/internal/storage/archive"
	"github.com/newthinker/marketmind/internal/storage/signal"
	"go.uber.org/zap"
)

// runtime holds the wired application and what must be released on exit.
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	app     *app.App
	router  *router.Router
	metrics *metrics.Registry
	closers []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = r.log.Sync()
}

// loadConfig reads --config, or falls back to defaults.
func loadConfig() (*config.Config, bool, error) {
	if cfgFile == "" {
		return config.Defaults(), false, nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, true, fmt.Errorf("loading config: %w", err)
	}
	return cfg, true, nil
}

// bootstrap loads configuration and wires every component.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, fromFile, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(debug, level)
	if err != nil {
		return nil, err
	}
	if !fromFile {
		log.Warn("no config file specified, using defaults")
	}

	rt := &runtime{cfg: cfg, log: log}
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.NewRegistry()
	}

	eng, err := rt.buildEngine(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	history, err := rt.buildHistory(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	a := app.New(eng, history, log)
	a.SetSchedule(cfg.Watch.Schedule, core.ParseTimeframe(cfg.Watch.Timeframe))
	a.SetWatchlist(cfg.Watch.Tickers)
	if rt.metrics != nil {
		a.SetRecorder(rt.metrics)
	}

	ar, err := rt.buildArchive()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if ar != nil {
		a.SetArchiver(ar)
	}

	rtr, err := rt.buildRouter()
	if err != nil {
		rt.Close()
		return nil, err
	}
	if rtr != nil {
		rtr.StartCleanupRoutine(ctx, time.Hour)
		a.SetRouter(rtr, cfg.Watch.Notify.Digest)
		rt.router = rtr
	}

	rt.app = a
	return rt, nil
}

// buildRouter registers the configured alert channels. It returns nil when
// none are configured.
func (r *runtime) buildRouter() (*router.Router, error) {
	n := r.cfg.Watch.Notify
	if !n.Enabled() {
		return nil, nil
	}

	registry := notifier.NewRegistry()
	if n.Webhook.URL != "" {
		wh, err := webhook.New(n.Webhook.URL, n.Webhook.Headers)
		if err != nil {
			return nil, err
		}
		registry.Register(wh)
	}
	if n.Telegram.BotToken != "" {
		tg, err := telegram.New(n.Telegram.BotToken, n.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		registry.Register(tg)
	}
	if n.Email.Host != "" {
		em, err := email.New(n.Email.Host, n.Email.Port, n.Email.Username, n.Email.Password, n.Email.From, n.Email.To)
		if err != nil {
			return nil, err
		}
		registry.Register(em)
	}

	r.log.Info("watch alerts enabled", zap.Int("notifiers", registry.Len()))
	return router.New(router.Config{
		MinConfidence: n.MinConfidence,
		Cooldown:      n.Cooldown,
		Biases:        n.Biases,
		OnBiasChange:  n.OnBiasChange,
	}, registry, r.log), nil
}

func (r *runtime) buildEngine(ctx context.Context) (*engine.Engine, error) {
	cfg := r.cfg

	// Price series
	sources := collector.NewRegistry()
	sources.Register(yahoo.New())

	var source collector.PriceSource
	if cfg.Price.Source != "demo" {
		source, _ = sources.Get(cfg.Price.Source)
	}
	demo := series.NewDemoSynthesizer(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
	prices := series.NewProvider(source, demo, series.Config{
		Timeout: cfg.Price.Timeout,
		MinBars: cfg.Price.MinBars,
	}, r.log)

	// News
	var opts []news.Option
	if cfg.News.UserAgent != "" {
		opts = append(opts, news.WithUserAgent(cfg.News.UserAgent))
	}
	newsSources := make([]news.Source, 0, len(cfg.News.Sources))
	for _, name := range cfg.News.Sources {
		src, err := news.NewSource(name, opts...)
		if err != nil {
			return nil, err
		}
		newsSources = append(newsSources, src)
	}
	agg := news.NewAggregator(newsSources, cfg.News.Timeout, r.log)

	headlineCache, err := r.buildCache(ctx)
	if err != nil {
		return nil, err
	}
	fetcher := news.NewCachedFetcher(agg, headlineCache, cfg.News.CacheTTL, r.log)

	eng := engine.New(prices, fetcher, sentiment.NewScorer(sentiment.NewVaderAnalyzer()), r.log)
	eng.SetNewsLimit(cfg.News.Limit)

	if r.metrics != nil {
		prices.SetRecorder(r.metrics)
		agg.SetRecorder(r.metrics)
		eng.SetRecorder(r.metrics)
	}

	// Optional LLM enrichment
	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if provider != nil {
		eng.SetNarrator(meta.NewNarrator(provider, r.log), cfg.LLM.Timeout)
		r.log.Info("llm enrichment enabled", zap.String("provider", provider.Name()))
	}

	return eng, nil
}

func (r *runtime) buildCache(ctx context.Context) (cache.Cache, error) {
	var c cache.Cache
	switch r.cfg.Cache.Type {
	case "redis":
		rc := r.cfg.Cache.Redis
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting headline cache: %w", err)
		}
		c = redisCache
	default:
		c = cache.NewMemoryCache()
	}
	r.closers = append(r.closers, c.Close)
	return c, nil
}

func (r *runtime) buildHistory(ctx context.Context) (signal.Store, error) {
	hot := r.cfg.Storage.Hot
	var store signal.Store
	switch hot.Type {
	case "postgres":
		pg, err := signal.NewPostgresStore(ctx, hot.DSN)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		store = signal.NewMemoryStore(hot.MaxRecords)
	}
	r.closers = append(r.closers, store.Close)
	return store, nil
}

func (r *runtime) buildArchive() (*archive.SignalArchive, error) {
	cold := r.cfg.Storage.Cold
	var backend archive.Storage
	switch cold.Type {
	case "localfs":
		fs, err := archive.NewLocalFS(cold.Path)
		if err != nil {
			return nil, err
		}
		backend = fs
	case "s3":
		s3, err := archive.NewS3(archive.S3Config{
			Bucket:    cold.S3.Bucket,
			Endpoint:  cold.S3.Endpoint,
			Region:    cold.S3.Region,
			AccessKey: cold.S3.AccessKey,
			SecretKey: cold.S3.SecretKey,
			Prefix:    cold.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		backend = s3
	default:
		return nil, nil
	}
	return archive.NewSignalArchive(backend, r.log), nil
}
