package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vietddude/dormancy-watcher/internal/core/config"
	"github.com/vietddude/dormancy-watcher/internal/core/cursor"
	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/detector"
	"github.com/vietddude/dormancy-watcher/internal/history"
	"github.com/vietddude/dormancy-watcher/internal/indexing/emitter"
	"github.com/vietddude/dormancy-watcher/internal/indexing/health"
	"github.com/vietddude/dormancy-watcher/internal/indexing/indexer"
	"github.com/vietddude/dormancy-watcher/internal/indexing/metrics"
	"github.com/vietddude/dormancy-watcher/internal/indexing/throttle"
	"github.com/vietddude/dormancy-watcher/internal/infra/chain/evm"
	"github.com/vietddude/dormancy-watcher/internal/infra/etherscan"
	redisclient "github.com/vietddude/dormancy-watcher/internal/infra/redis"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/provider"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage/memory"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage/postgres"
)

// Watcher is the main application struct that manages the indexer lifecycle.
type Watcher struct {
	cfg          *config.AppConfig
	chains       map[domain.ChainID]*chainRuntime
	order        []domain.ChainID
	cursors      cursor.Manager
	emitter      emitter.Emitter
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
	wg           sync.WaitGroup
}

// NewWatcher wires storage, alert sinks and one scan pipeline per configured chain.
func NewWatcher(ctx context.Context, cfg *config.AppConfig) (*Watcher, error) {
	w := &Watcher{
		cfg:    cfg,
		chains: make(map[domain.ChainID]*chainRuntime, len(cfg.Chains)),
		log:    slog.Default(),
	}

	// 1. Initialize Storage
	var cursorRepo storage.CursorRepository
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		w.db = db
		cursorRepo = postgres.NewCursorRepo(db)
		w.log.Info("Using PostgreSQL storage")
	} else {
		cursorRepo = memory.NewCursorRepo()
		w.log.Info("Using Memory storage")
	}
	w.cursors = cursor.NewManager(cursorRepo)

	// 2. Alert sinks
	sinks := []emitter.Emitter{emitter.NewLogEmitter()}
	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			w.closeDB()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		w.redisClient = client
		sinks = append(sinks, emitter.NewRedisEmitter(client, cfg.Redis.Channel))
		w.log.Info("Publishing alerts to Redis", "channel", cfg.Redis.Channel)
	}
	w.emitter = emitter.NewMultiEmitter(sinks...)

	// 3. One pipeline per chain
	historyMetrics := metrics.NewHistory()
	rpcMetrics := metrics.NewRPCClient()
	for _, chainCfg := range cfg.Chains {
		rt := w.buildChain(chainCfg, historyMetrics, rpcMetrics)
		w.chains[chainCfg.ChainID] = rt
		w.order = append(w.order, chainCfg.ChainID)
	}

	// 4. Health
	w.healthMon = health.NewMonitor(w.order, w.cursors, w, w)
	if w.db != nil {
		w.healthMon.AddCheck("database", w.db.Health)
	}
	if w.redisClient != nil {
		w.healthMon.AddCheck("redis", w.redisClient.Health)
	}
	w.healthServer = health.NewServer(w.healthMon, cfg.Server.Port)

	return w, nil
}

func (w *Watcher) buildChain(chainCfg config.ChainConfig, historyMetrics *metrics.History, rpcMetrics *metrics.RPCClient) *chainRuntime {
	chainID := chainCfg.ChainID
	name := chainCfg.InternalCode
	if name == "" {
		name = domain.ChainIDToName[chainID]
	}

	providers := make([]rpc.Provider, 0, len(chainCfg.Providers))
	for _, p := range chainCfg.Providers {
		providers = append(providers, rpc.NewHTTPProvider(p.Name, p.URL, p.Timeout))
	}
	client := rpc.NewClient(chainID, providers, chainCfg.Retry, rpcMetrics)
	detectorMetrics := metrics.NewDetector(chainID)
	adapter := evm.NewEVMAdapter(chainID, client).WithMetrics(detectorMetrics)
	head := throttle.NewHeadCache(adapter, chainCfg.Throttle.HeadCacheTTL)
	var controller *throttle.Controller
	if chainCfg.Throttle.Enabled {
		controller = throttle.NewController(chainCfg.ScanInterval, chainCfg.Throttle)
	}

	explorer := etherscan.NewClient(w.cfg.Etherscan.Config, chainID)
	historyProvider := history.NewRetryingProvider(explorer, historyMetrics).
		WithRetryDelay(w.cfg.Etherscan.RetryDelay)
	det := detector.New(historyProvider, w.cfg.DetectorFor(chainCfg), detectorMetrics)

	buffer := emitter.NewFinalityBuffer(w.emitter, chainCfg.FinalityBlocks)
	pipeline := indexer.NewPipeline(indexer.Config{
		ChainID:        chainID,
		ChainAdapter:   adapter,
		Cursor:         w.cursors,
		Detector:       det,
		Buffer:         buffer,
		Metrics:        metrics.NewPipeline(chainID),
		Head:           head,
		Throttle:       controller,
		ScanInterval:   chainCfg.ScanInterval,
		Workers:        chainCfg.Workers,
		StartBlock:     chainCfg.StartBlock,
		FinalityBlocks: chainCfg.FinalityBlocks,
	})

	w.log.Info("Chain configured",
		"chain", chainID,
		"name", name,
		"providers", len(providers),
		"finality", chainCfg.FinalityBlocks,
	)
	return &chainRuntime{
		id:       chainID,
		name:     name,
		head:     head,
		client:   client,
		explorer: explorer,
		pipeline: pipeline,
	}
}

// Start starts the health server and every chain pipeline. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	go func() {
		if err := w.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.log.Error("Health server failed", "error", err)
		}
	}()

	for _, id := range w.order {
		rt := w.chains[id]
		w.log.Info("Starting indexer", "chain", id)
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := rt.pipeline.Start(ctx); err != nil {
				w.log.Error("Indexer failed", "chain", id, "error", err)
			}
		}()
	}
	return nil
}

// Stop stops the pipelines, waits for them to return and releases every connection.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")

	for _, rt := range w.chains {
		_ = rt.pipeline.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		w.log.Warn("Timed out waiting for indexers to stop")
	}

	var errs []error
	for _, rt := range w.chains {
		if err := rt.close(); err != nil {
			errs = append(errs, err)
		}
	}
	// Closing the emitter also closes the Redis client it publishes through.
	if err := w.emitter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close emitter: %w", err))
	}
	w.closeDB()

	if err := w.healthServer.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop health server: %w", err))
	}
	return errors.Join(errs...)
}

func (w *Watcher) closeDB() {
	if w.db != nil {
		if err := w.db.Close(); err != nil {
			w.log.Warn("Failed to close database", "error", err)
		}
	}
}

// GetLatestHeight implements health.BlockHeightFetcher.
func (w *Watcher) GetLatestHeight(ctx context.Context, chainID domain.ChainID) (uint64, error) {
	rt, ok := w.chains[chainID]
	if !ok {
		return 0, fmt.Errorf("chain not found: %s", chainID)
	}
	return rt.head.GetLatestBlock(ctx)
}

// Providers implements health.ProviderSource.
func (w *Watcher) Providers(chainID domain.ChainID) []provider.Provider {
	rt, ok := w.chains[chainID]
	if !ok {
		return nil
	}
	return rt.client.Providers()
}
