// Package app wires the process together: config, logging, the Airbnb
// client, the subscription store, the notifier, the watcher, and the
// scheduler that triggers poll cycles.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staywatch/internal/airbnb"
	"staywatch/internal/config"
	"staywatch/internal/notify"
	"staywatch/internal/runtime/supervisor"
	"staywatch/internal/schedule"
	"staywatch/internal/store"
	"staywatch/internal/telegram"
	"staywatch/internal/watch"
	logx "staywatch/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	st      store.Store
	client  *airbnb.Client
	watcher *watch.Watcher
	sched   *schedule.Service

	sup *supervisor.Supervisor
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	tg, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token},
		log.With(logx.String("comp", "telegram")))
	if err != nil {
		logs.Close()
		return nil, err
	}

	acfg, err := mapAirbnbConfig(cfg)
	if err != nil {
		logs.Close()
		return nil, err
	}
	client, err := airbnb.New(acfg, log.With(logx.String("comp", "airbnb")))
	if err != nil {
		logs.Close()
		return nil, err
	}

	scfg, err := mapStoreConfig(cfg)
	if err != nil {
		logs.Close()
		return nil, err
	}
	st, err := store.Open(scfg, log.With(logx.String("comp", "storage")))
	if err != nil {
		logs.Close()
		return nil, err
	}
	log.Info("storage opened", logx.String("driver", scfg.Driver))

	notifier := notify.New(tg, acfg.BaseURL, log.With(logx.String("comp", "notify")))

	wcfg, schedCfg, err := mapWatchConfig(cfg)
	if err != nil {
		_ = st.Close()
		logs.Close()
		return nil, err
	}
	watcher := watch.New(wcfg, st, client, notifier, log.With(logx.String("comp", "watch")))
	sched := schedule.New(schedCfg, log.With(logx.String("comp", "schedule")))

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logs,
		st:      st,
		client:  client,
		watcher: watcher,
		sched:   sched,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return validate(cfg)
	})

	if err := a.sched.Start(a.sup.Context(), a.watcher.Run); err != nil {
		return err
	}

	// hot reload fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		last := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				a.applyReload(last, newCfg)
				last = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

// applyReload applies the hot-reloadable sections. Storage, Telegram token
// and Airbnb credentials require a restart; say so instead of half-applying.
func (a *App) applyReload(old, cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	wcfg, schedCfg, err := mapWatchConfig(cfg)
	if err != nil {
		a.log.Warn("invalid watch config; keeping previous", logx.Err(err))
	} else {
		a.watcher.Apply(wcfg)
		a.sched.Apply(schedCfg)
	}

	if skip, err := skipMalformed(cfg.Watch.OnMalformed); err != nil {
		a.log.Warn("invalid on_malformed policy; keeping previous", logx.Err(err))
	} else {
		a.client.SetSkipMalformed(skip)
	}

	if old != nil {
		if old.Storage != cfg.Storage {
			a.log.Warn("storage config changed; restart required for changes to take effect")
		}
		if old.Telegram != cfg.Telegram || old.Airbnb != cfg.Airbnb {
			a.log.Warn("credential config changed; restart required for changes to take effect")
		}
	}

	a.log.Info("config reloaded")
}

// RunOnce executes a single poll cycle and returns, for one-shot invocations
// from an external scheduler (cron, systemd timer) instead of the resident
// trigger. The run timeout still applies.
func (a *App) RunOnce(ctx context.Context) error {
	cfg := a.cfgm.Get()
	_, schedCfg, err := mapWatchConfig(cfg)
	if err != nil {
		return err
	}
	if schedCfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, schedCfg.RunTimeout)
		defer cancel()
	}
	return a.watcher.Run(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	a.sched.Stop(stopCtx)
	cancel()

	if a.sup != nil {
		a.sup.Cancel()
		wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_ = a.sup.Wait(wctx)
		cancel()
	}

	if a.st != nil {
		if err := a.st.Close(); err != nil {
			a.log.Warn("storage close failed", logx.Err(err))
		}
	}

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}

// ---- config mapping ----

const (
	defaultInterval          = 5 * time.Minute
	defaultRunTimeout        = 540 * time.Second
	defaultListingPause      = 3 * time.Second
	defaultSubscriptionPause = 15 * time.Second
)

func mapWatchConfig(cfg *config.Config) (watch.Config, schedule.Config, error) {
	listingPause, err := config.ParseDurationOrDefault("watch.listing_pause",
		cfg.Watch.ListingPause, defaultListingPause)
	if err != nil {
		return watch.Config{}, schedule.Config{}, err
	}
	subPause, err := config.ParseDurationOrDefault("watch.subscription_pause",
		cfg.Watch.SubscriptionPause, defaultSubscriptionPause)
	if err != nil {
		return watch.Config{}, schedule.Config{}, err
	}
	interval, err := config.ParseDurationOrDefault("watch.interval",
		cfg.Watch.Interval, defaultInterval)
	if err != nil {
		return watch.Config{}, schedule.Config{}, err
	}
	runTimeout, err := config.ParseDurationOrDefault("watch.run_timeout",
		cfg.Watch.RunTimeout, defaultRunTimeout)
	if err != nil {
		return watch.Config{}, schedule.Config{}, err
	}

	return watch.Config{
			ListingPause:      listingPause,
			SubscriptionPause: subPause,
		}, schedule.Config{
			Interval:   interval,
			RunTimeout: runTimeout,
		}, nil
}

func mapAirbnbConfig(cfg *config.Config) (airbnb.Config, error) {
	timeout, err := config.ParseDurationField("airbnb.timeout", cfg.Airbnb.Timeout)
	if err != nil {
		return airbnb.Config{}, err
	}
	skip, err := skipMalformed(cfg.Watch.OnMalformed)
	if err != nil {
		return airbnb.Config{}, err
	}
	return airbnb.Config{
		APIKey:        cfg.Airbnb.APIKey,
		BaseURL:       cfg.Airbnb.BaseURL,
		Locale:        cfg.Airbnb.Locale,
		Timeout:       timeout,
		SkipMalformed: skip,
	}, nil
}

func skipMalformed(policy string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "skip":
		return true, nil
	case "abort":
		return false, nil
	default:
		return false, fmt.Errorf("watch.on_malformed: unknown policy %q (want skip or abort)", policy)
	}
}

func mapStoreConfig(cfg *config.Config) (store.Config, error) {
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

func validate(cfg *config.Config) error {
	if _, _, err := mapWatchConfig(cfg); err != nil {
		return err
	}
	if _, err := mapAirbnbConfig(cfg); err != nil {
		return err
	}
	if _, err := mapStoreConfig(cfg); err != nil {
		return err
	}
	return nil
}
