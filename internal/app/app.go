// Package app wires configuration, storage, transports and the
// dispatch pipeline into a runnable daemon.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opspager/internal/addressing"
	"opspager/internal/addressing/exprlang"
	"opspager/internal/config"
	"opspager/internal/dispatch"
	"opspager/internal/eventbus"
	"opspager/internal/ntfy"
	"opspager/internal/observability/pprof"
	"opspager/internal/pager"
	"opspager/internal/storage"
	"opspager/internal/telegram"
	"opspager/internal/transport"
	"opspager/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	db         *storage.DB
	bus        eventbus.Bus
	transports *transport.Manager
	dispatcher *dispatch.Dispatcher

	workers []*pager.DeliveryWorker
	ingest  *dispatch.IngestServer
	sink    *storage.EventSink
	debug   *pprof.Service

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(cfgPath string) (*App, error) {
	cfgMgr := config.NewManager(cfgPath)
	cfg, err := cfgMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(loggingConfig(cfg.Logging))
	cfgMgr.SetLogger(log.With(logx.String("component", "config")))

	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 5*time.Second)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(storage.Config{Path: cfg.Storage.Path, BusyTimeout: busyTimeout},
		log.With(logx.String("component", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &App{
		cfgMgr: cfgMgr,
		logSvc: logSvc,
		log:    log,
		db:     db,
		bus:    eventbus.New(),
	}
	if err := a.wire(cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(cfg *config.Config) error {
	a.transports = transport.NewManager()

	if pc := cfg.Transports.Pager; pc != nil {
		if err := a.wirePager(pc); err != nil {
			return err
		}
	}
	if tc := cfg.Transports.Telegram; tc != nil {
		t, err := telegram.New(telegram.Config{Key: tc.Key, BotToken: tc.BotToken},
			a.bus, a.log.With(logx.String("component", "telegram")))
		if err != nil {
			return err
		}
		if err := a.transports.Register(t); err != nil {
			return err
		}
	}
	if nc := cfg.Transports.Ntfy; nc != nil {
		t := ntfy.New(ntfy.Config{Key: nc.Key, ServerURL: nc.ServerURL, AccessToken: nc.AccessToken},
			a.bus, a.log.With(logx.String("component", "ntfy")))
		if err := a.transports.Register(t); err != nil {
			return err
		}
	}

	resolver := addressing.NewResolver(exprlang.New(), a.transports,
		a.log.With(logx.String("component", "addressing")))
	a.dispatcher = dispatch.NewDispatcher(resolver, a.bus,
		a.log.With(logx.String("component", "dispatch")))

	a.sink = storage.NewEventSink(storage.NewEventRepo(a.db), a.bus,
		a.log.With(logx.String("component", "events")))

	if cfg.Ingest.Enabled {
		a.ingest = dispatch.NewIngestServer(cfg.Ingest.Addr, a.dispatcher,
			storage.NewRecipientRepo(a.db),
			a.log.With(logx.String("component", "ingest")))
	}

	a.debug = pprof.New(pprof.Config{
		Enabled: cfg.Debug.Enabled,
		Addr:    cfg.Debug.Addr,
		Token:   cfg.Debug.Token,
	}, a.log.With(logx.String("component", "pprof")))
	return nil
}

func (a *App) wirePager(pc *config.PagerConfig) error {
	connectTimeout, err := config.ParseDurationOrDefault("transports.pager.connect_timeout",
		pc.ConnectTimeout, pager.DefaultConnectTimeout)
	if err != nil {
		return err
	}
	pollInterval, err := config.ParseDurationOrDefault("transports.pager.poll_interval",
		pc.PollInterval, 15*time.Second)
	if err != nil {
		return err
	}

	transmitter := pager.NewTCPTransmitter(pc.TransmitterHost, pc.TransmitterPort, connectTimeout)
	queue := pager.NewQueueService(storage.NewMessageRepo(a.db), transmitter, a.bus,
		a.log.With(logx.String("component", "pager")))

	t := pager.NewTransport(pc.Key, queue,
		storage.NewPagerRepo(a.db), storage.NewChannelRepo(a.db), a.bus,
		a.log.With(logx.String("component", "pager")))
	if err := a.transports.Register(t); err != nil {
		return err
	}

	a.workers = append(a.workers, pager.NewDeliveryWorker(pager.DeliveryWorkerConfig{
		TransportKey: t.Key(),
		PollInterval: pollInterval,
		RatePerSec:   pc.RatePerSec,
	}, queue, a.log.With(logx.String("component", "delivery"))))
	return nil
}

// Dispatcher exposes the pipeline for embedding callers.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Start launches the event sink, delivery workers, config watcher and
// the ingest endpoint.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.sink.Run(runCtx)
	}()

	for _, w := range a.workers {
		if err := w.Start(runCtx); err != nil {
			cancel()
			return err
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgMgr.Watch(runCtx); err != nil {
			a.log.Warn("config watcher stopped", logx.Err(err))
		}
	}()

	// Logging is the only hot-reloadable concern; everything else
	// needs a restart.
	updates := a.cfgMgr.Subscribe(1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgMgr.Unsubscribe(updates)
		for {
			select {
			case <-runCtx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				a.logSvc.Apply(loggingConfig(cfg.Logging))
				a.log.Debug("logging config applied")
			}
		}
	}()

	if a.ingest != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.ingest.Start(runCtx); err != nil {
				a.log.Error("ingest endpoint stopped", logx.Err(err))
			}
		}()
	}

	if a.debug.Enabled() {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.debug.Start(runCtx); err != nil {
				a.log.Warn("pprof endpoint stopped", logx.Err(err))
			}
		}()
	}

	a.log.Info("opspager started",
		logx.Int("transports", len(a.transports.ActiveTransports())))
	return nil
}

// Stop shuts everything down and flushes the log sinks.
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	err := a.db.Close()
	_ = a.logSvc.Close()
	return err
}

func loggingConfig(lc config.LoggingConfig) logx.Config {
	console := true
	if lc.Console != nil {
		console = *lc.Console
	}
	return logx.Config{
		Level:   lc.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: lc.File != "",
			Path:    lc.File,
		},
	}
}
