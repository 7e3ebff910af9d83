package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	configfile "github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/config/file"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/ai"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/ingest/batchfile"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/ingest/github"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/metrics/prometheus"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/publish/jsonfile"
	rosterfile "github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/roster/file"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/storage/memory"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/storage/redis"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/storage/sqlite"
	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driving/cli"
	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
	"github.com/knowbeforeyouvote/kbyv/internal/core/services"
	"github.com/knowbeforeyouvote/kbyv/internal/logger"
)

// stores groups the persistence adapters selected by the storage backend.
type stores struct {
	cache  driven.VerdictCache
	faults driven.FaultStore
	audit  driven.AuditStore
}

// closers collects release functions in creation order.
type closers struct {
	mu  sync.Mutex
	fns []func() error
}

func (c *closers) add(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, fn)
}

// close runs the release functions in reverse order.
func (c *closers) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		errs = append(errs, c.fns[i]())
	}
	c.fns = nil
	return errors.Join(errs...)
}

// bootstrap builds the services for one invocation from the config directory.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Thresholds.Validate(); err != nil {
		return nil, err
	}

	normalizer := services.NewNameNormalizer(nil)
	matcher, err := services.NewMatcher(normalizer, settings.Thresholds, settings.Workers)
	if err != nil {
		return nil, err
	}

	c := &closers{}
	st, err := openStores(ctx, settings.Storage, c)
	if err != nil {
		return nil, errors.Join(err, c.close())
	}

	promptDir := filepath.Join(filepath.Dir(configStore.Path()), "prompts")
	prompts, err := configfile.NewPromptStore(promptDir, services.DefaultPrompts())
	if err != nil {
		return nil, errors.Join(err, c.close())
	}

	b := &builder{
		settingsService: settingsService,
		noOracle:        opts.NoOracle,
		normalizer:      normalizer,
		matcher:         matcher,
		stores:          st,
		prompts:         prompts,
		closers:         c,
	}

	return &cli.Services{
		Settings: settingsService,
		Names:    services.NewNameService(normalizer, matcher),
		Faults:   services.NewFaultService(st.faults),
		Pipeline: b.pipeline,
		Close:    c.close,
	}, nil
}

// openStores selects the verdict cache, fault store and audit store.
// The redis backend holds only the verdict cache; faults and audit records
// stay in sqlite.
func openStores(ctx context.Context, cfg domain.StorageSettings, c *closers) (stores, error) {
	switch cfg.Backend {
	case domain.StorageMemory, "":
		return stores{
			cache:  memory.NewVerdictCache(),
			faults: memory.NewFaultStore(),
			audit:  memory.NewAuditStore(),
		}, nil
	case domain.StorageSQLite, domain.StorageRedis:
	default:
		return stores{}, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}

	db, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return stores{}, fmt.Errorf("open sqlite store: %w", err)
	}
	c.add(db.Close)
	logger.Debug("sqlite store at %s", db.Path())

	st := stores{
		cache:  db.VerdictCache(cfg.CacheTTL),
		faults: db.FaultStore(),
		audit:  db.AuditStore(),
	}
	if cfg.Backend == domain.StorageSQLite {
		return st, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return stores{}, fmt.Errorf("open redis cache: %w", err)
	}
	cache := redis.NewVerdictCache(client, redis.WithTTL(cfg.CacheTTL))
	c.add(cache.Close)
	st.cache = cache
	return st, nil
}

// builder assembles a pipeline when a run is requested.
type builder struct {
	settingsService *services.SettingsService
	noOracle        bool

	normalizer *services.NameNormalizer
	matcher    *services.Matcher
	stores     stores
	prompts    driven.PromptStore
	closers    *closers
}

func (b *builder) pipeline(ctx context.Context) (driving.Pipeline, error) {
	settings, err := b.settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	sources, err := buildSources(ctx, settings.Sources)
	if err != nil {
		return nil, err
	}

	var reasoning *services.ReasoningClient
	if b.noOracle {
		logger.Warn("running without the oracle: no connection will be published")
	} else {
		llm, err := ai.CreateAndValidateLLMService(&settings.Oracle.LLM)
		if err != nil {
			return nil, err
		}
		if llm == nil {
			return nil, fmt.Errorf("%w: no oracle provider configured, run 'kbyv config llm' or pass --no-oracle",
				domain.ErrLLMUnavailable)
		}
		b.closers.add(llm.Close)
		reasoning = services.NewReasoningClient(llm, settings.Oracle)
	}

	metrics := prometheus.New()
	orchestrator, err := services.NewPipelineOrchestrator(services.PipelineDeps{
		Roster:     rosterfile.NewRoster(settings.Roster.Path),
		Sources:    sources,
		Publisher:  jsonfile.NewPublisher(settings.Output.Dir),
		Normalizer: b.normalizer,
		Matcher:    b.matcher,
		Oracle:     services.NewOracleAdapter(reasoning, b.prompts, b.stores.cache, metrics),
		Classifier: services.NewClassifier(reasoning, b.prompts),
		Reasoning:  reasoning,
		Faults:     b.stores.faults,
		Audit:      b.stores.audit,
		Metrics:    metrics,
	}, services.PipelineConfig{
		Thresholds: settings.Thresholds,
		Workers:    settings.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &meteredPipeline{
		Pipeline: orchestrator,
		metrics:  metrics,
		path:     settings.Output.MetricsFile,
	}, nil
}

// buildSources creates one entity source per configured entry.
func buildSources(ctx context.Context, cfgs []domain.SourceSettings) ([]driven.EntitySource, error) {
	sources := make([]driven.EntitySource, 0, len(cfgs))
	clients := make(map[string]*github.Client)
	for _, cfg := range cfgs {
		switch cfg.Kind {
		case domain.SourceKindFile:
			sources = append(sources, batchfile.NewSource(cfg.ID, cfg.Path))
		case domain.SourceKindGitHub:
			client, ok := clients[cfg.TokenEnv]
			if !ok {
				token := ""
				if cfg.TokenEnv != "" {
					token = os.Getenv(cfg.TokenEnv)
				}
				client = github.NewClient(ctx, token)
				clients[cfg.TokenEnv] = client
			}
			src, err := github.NewSource(cfg, client)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		default:
			return nil, fmt.Errorf("%w: source kind %q", domain.ErrUnsupportedType, cfg.Kind)
		}
	}
	return sources, nil
}

// meteredPipeline writes the metrics textfile after every run.
type meteredPipeline struct {
	driving.Pipeline
	metrics *prometheus.Metrics
	path    string
}

func (p *meteredPipeline) Run(ctx context.Context) (*domain.RunReport, error) {
	report, err := p.Pipeline.Run(ctx)
	if writeErr := p.metrics.WriteTextfile(p.path); writeErr != nil {
		logger.Warn("failed to write metrics: %v", writeErr)
	}
	return report, err
}
