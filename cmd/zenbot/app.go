package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zenbot/internal/agent"
	"zenbot/internal/config"
	"zenbot/internal/llm"
	"zenbot/internal/logging"
	"zenbot/internal/orderapi"
	"zenbot/internal/policy"
	"zenbot/internal/sentiment"
)

// app wires the configured components together for one command invocation.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	file    *logging.FileLogger
	router  agent.Router
	llm     llm.Client
	closers []func() error
}

// component returns a logger prefixed with the component name, sharing the
// command's log file. Without a log file every component logger is a no-op.
func (a *app) component(name string) logging.Logger {
	if a.file == nil {
		return logging.Nop()
	}
	return a.file.WithComponent(name)
}

// newApp loads configuration and builds the full component graph. The
// variant flag, when set, overrides the configured agent variant.
func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.variant != "" {
		cfg.Agent.Variant = flags.variant
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg, logger: logging.Nop()}

	if flags.logPath != "" {
		fileLogger, err := logging.NewFileLogger(flags.logPath, logging.LevelInfo)
		if err != nil {
			return nil, err
		}
		a.logger = fileLogger
		a.file = fileLogger
		a.closers = append(a.closers, fileLogger.Close)
	}

	if flags.metricsAddr != "" {
		a.serveMetrics(flags.metricsAddr)
	}

	quota, err := a.buildQuotaStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	engine := policy.NewEngine(policy.Config{
		CancellationWindowDays:       cfg.Policy.CancellationWindowDays,
		ReturnWindowDays:             cfg.Policy.ReturnWindowDays,
		MaxCancellationsPerUserMonth: cfg.Policy.MaxCancellationsPerUserMonth,
		BlackoutDates:                cfg.Policy.BlackoutDates,
	}, quota, a.component("policy"))

	a.llm = llm.NewOpenAIClient(cfg.LLM.Model, llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	}, a.component("llm"))

	classifier, err := a.buildClassifier()
	if err != nil {
		a.Close()
		return nil, err
	}

	router, err := agent.New(agent.Variant(cfg.Agent.Variant), agent.Deps{
		Policy:               engine,
		Gateway:              a.buildGateway(),
		LLM:                  a.llm,
		Classifier:           classifier,
		FrustrationThreshold: cfg.Sentiment.FrustrationThreshold,
		DecisionTemperature:  cfg.LLM.DecisionTemperature,
		RewriteTemperature:   cfg.LLM.RewriteTemperature,
		Logger:               a.component("agent"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.router = router
	return a, nil
}

// serveMetrics exposes the prometheus registry on addr for the lifetime
// of the command. Listen failures are logged, not fatal: a busy port must
// not abort an evaluation run.
func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics listener on %s: %v", addr, err)
		}
	}()
	a.closers = append(a.closers, srv.Close)
}

func (a *app) buildQuotaStore() (policy.QuotaStore, error) {
	if a.cfg.Policy.QuotaDBPath == "" {
		return policy.NewMemoryQuotaStore(), nil
	}
	store, err := policy.OpenSQLiteQuotaStore(a.cfg.Policy.QuotaDBPath)
	if err != nil {
		return nil, fmt.Errorf("open quota store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *app) buildGateway() orderapi.Gateway {
	if a.cfg.OrderAPI.Simulate {
		return orderapi.NewSimulatedGateway()
	}
	return orderapi.NewHTTPGateway(a.cfg.OrderAPI.CancelURL, a.cfg.OrderAPI.TrackURL, a.cfg.OrderAPI.Timeout, a.component("orderapi"))
}

func (a *app) buildClassifier() (sentiment.Classifier, error) {
	if a.cfg.Sentiment.Endpoint == "" {
		return nil, nil
	}
	classifier := sentiment.NewHTTPClassifier(a.cfg.Sentiment.Endpoint, a.cfg.OrderAPI.Timeout, a.component("sentiment"))
	cached, err := sentiment.NewCachedClassifier(classifier, a.cfg.Sentiment.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// Close releases every resource opened during wiring, last first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
