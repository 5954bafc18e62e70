package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"plstream-engine/internal/classifier"
	"plstream-engine/internal/config"
	"plstream-engine/internal/dataset"
	"plstream-engine/internal/engine"
	"plstream-engine/internal/index"
	"plstream-engine/internal/pipeline"
	"plstream-engine/internal/storage"
	"plstream-engine/internal/supervised"
	"plstream-engine/internal/wordvec"
)

var rootCmd = &cobra.Command{
	Use:   "plstream",
	Short: "plstream - streaming sentiment classification without labels",
}

var runCmd = &cobra.Command{
	Use:   "run <reviews.csv>",
	Short: "Stream a review CSV through the classifier and report per-batch accuracy",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify one text against the saved model snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <word>",
	Short: "Show the words most similar to a vocabulary word",
	Args:  cobra.ExactArgs(1),
	RunE:  runNeighbors,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show per-batch reports recorded in the run database",
	RunE:  runHistory,
}

var (
	configFlag  string
	dataFlag    string
	topKFlag    int
	colabelFlag bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "plstream.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "data", "data directory")
	runCmd.Flags().BoolVar(&colabelFlag, "colabel", false, "co-train a supervised classifier on merged pseudo-labels")
	neighborsCmd.Flags().IntVar(&topKFlag, "k", 10, "number of neighbors")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFlag)
}

func modelOptions(cfg *config.Config) wordvec.Options {
	return wordvec.Options{
		Dim:      cfg.Model.VectorSize,
		Epochs:   cfg.Model.Epochs,
		Window:   cfg.Model.Window,
		Negative: cfg.Model.Negative,
		MinCount: cfg.Model.MinCount,
		Workers:  cfg.Model.Workers,
		Seed:     cfg.Model.Seed,
	}
}

// loadModel restores the snapshot if one exists, otherwise returns a fresh
// model.
func loadModel(cfg *config.Config) (*wordvec.Model, *storage.SnapshotStore, error) {
	snap := storage.NewSnapshotStore(filepath.Join(dataFlag, cfg.Storage.SnapshotPath))
	if !snap.Exists() {
		return wordvec.New(modelOptions(cfg)), snap, nil
	}
	m, err := snap.Load(modelOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("loading model snapshot: %w", err)
	}
	return m, snap, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataFlag, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	model, snap, err := loadModel(cfg)
	if err != nil {
		return err
	}
	runs, err := storage.NewBoltRunStore(filepath.Join(dataFlag, cfg.Storage.RunDBPath))
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer runs.Close()

	trend := classifier.NewTrend()
	if cp, err := runs.Trend(); err == nil && cp.PosCount+cp.NegCount > 0 {
		trend = classifier.NewTrendFromCounts(cp.PosCount, cp.NegCount)
	}
	polarity := classifier.NewPolarity(cfg.Stream.Confidence, cfg.Stream.TemporalTrend, trend)
	stream := engine.New(model, polarity, engine.Config{
		BatchSize: cfg.Stream.BatchSize,
		Snapshot:  snap,
		Runs:      runs,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input, err := dataset.Stream(ctx, args[0])
	if err != nil {
		return err
	}

	var colabeler *pipeline.CoLabeler
	if colabelFlag {
		colabeler = pipeline.NewCoLabeler(supervised.New(), pipeline.NewMerger(cfg.Stream.MergeThreshold))
	}

	runner := pipeline.NewRunner(stream)
	runner.OnBatch(func(res engine.Result) {
		fmt.Printf("batch %d: size=%d accuracy=%.4f pos=%d neg=%d\n",
			res.Report.Index, res.Report.Size, res.Report.Accuracy,
			res.Report.Positive, res.Report.Negative)
		if colabeler != nil {
			merged := colabeler.Process(res)
			fmt.Printf("  colabel: kept=%d total_kept=%d total_dropped=%d\n",
				len(merged), colabeler.Accepted(), colabeler.Dropped())
		}
	})

	stats, err := runner.Run(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("done: consumed=%d batches=%d leftover=%d\n", stats.Consumed, stats.Batches, stats.Leftover)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, _, err := loadModel(cfg)
	if err != nil {
		return err
	}
	if model.VocabSize() == 0 {
		return fmt.Errorf("no model snapshot in %s, run 'plstream run' first", dataFlag)
	}

	polarity := classifier.NewPolarity(cfg.Stream.Confidence, cfg.Stream.TemporalTrend, classifier.NewTrend())
	stream := engine.New(model, polarity, engine.Config{BatchSize: cfg.Stream.BatchSize})

	confidence, label := stream.Classify(args[0])
	return json.NewEncoder(os.Stdout).Encode(map[string]any{
		"label":      label,
		"confidence": confidence,
	})
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, _, err := loadModel(cfg)
	if err != nil {
		return err
	}

	hits, err := index.Nearest(model, args[0], topKFlag)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Printf("%-20s %.4f\n", h.Word, h.Similarity)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runs, err := storage.NewBoltRunStore(filepath.Join(dataFlag, cfg.Storage.RunDBPath))
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer runs.Close()

	reports, err := runs.Batches()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no batches recorded")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("batch %d: size=%d accuracy=%.4f pos=%d neg=%d at=%s\n",
			r.Index, r.Size, r.Accuracy, r.Positive, r.Negative, r.Timestamp.Format("2006-01-02T15:04:05"))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
