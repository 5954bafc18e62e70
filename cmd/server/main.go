package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"plstream-engine/internal/api"
	"plstream-engine/internal/classifier"
	"plstream-engine/internal/config"
	"plstream-engine/internal/engine"
	"plstream-engine/internal/storage"
	"plstream-engine/internal/wordvec"
)

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides config)")
		configPath = flag.String("config", "plstream.yaml", "config file path")
		dataDir    = flag.String("data", "data", "data directory (model snapshot, run db)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	opts := wordvec.Options{
		Dim:      cfg.Model.VectorSize,
		Epochs:   cfg.Model.Epochs,
		Window:   cfg.Model.Window,
		Negative: cfg.Model.Negative,
		MinCount: cfg.Model.MinCount,
		Workers:  cfg.Model.Workers,
		Seed:     cfg.Model.Seed,
	}

	snap := storage.NewSnapshotStore(filepath.Join(*dataDir, cfg.Storage.SnapshotPath))
	model := wordvec.New(opts)
	if snap.Exists() {
		model, err = snap.Load(opts)
		if err != nil {
			log.Fatalf("failed to load model snapshot: %v", err)
		}
		log.Printf("resumed model snapshot: %d words", model.VocabSize())
	}

	runs, err := storage.NewBoltRunStore(filepath.Join(*dataDir, cfg.Storage.RunDBPath))
	if err != nil {
		log.Fatalf("failed to open run store: %v", err)
	}
	defer func() {
		if err := runs.Close(); err != nil {
			log.Printf("run store close error: %v", err)
		}
	}()

	trend := classifier.NewTrend()
	if cp, err := runs.Trend(); err == nil && cp.PosCount+cp.NegCount > 0 {
		trend = classifier.NewTrendFromCounts(cp.PosCount, cp.NegCount)
		log.Printf("resumed trend checkpoint: pos=%d neg=%d", cp.PosCount, cp.NegCount)
	}

	polarity := classifier.NewPolarity(cfg.Stream.Confidence, cfg.Stream.TemporalTrend, trend)
	stream := engine.New(model, polarity, engine.Config{
		BatchSize: cfg.Stream.BatchSize,
		Snapshot:  snap,
		Runs:      runs,
	})

	srv := api.NewServer(stream)

	log.Printf("plstream-engine listening on %s (data=%s dim=%d batch=%d)",
		cfg.Server.Addr, *dataDir, cfg.Model.VectorSize, cfg.Stream.BatchSize)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
