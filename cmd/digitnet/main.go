package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"digitnet/internal/config"
	"digitnet/internal/dataset"
	"digitnet/internal/model"
	"digitnet/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/mnist.yaml", "Path to YAML config")
	hidden := flag.Int("hidden", 0, "Number of hidden units")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	batchSize := flag.Int("batch-size", 0, "Mini-batch size")
	eta := flag.Float64("eta", 0, "Learning rate")
	numWorkers := flag.Int("num-workers", 0, "Goroutines per mini-batch and for shard loading")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log throughput every N epochs")
	trainShards := flag.String("train-shards", "", "Override training shard root")
	testShards := flag.String("test-shards", "", "Override test shard root")
	plotPath := flag.String("plot", "", "Write the accuracy curve to this image file")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		HiddenSize:    *hidden,
		Epochs:        *epochs,
		MiniBatchSize: *batchSize,
		Eta:           *eta,
		Seed:          *seed,
		NumWorkers:    *numWorkers,
		LogEvery:      *logEvery,
		TrainShards:   *trainShards,
		TestShards:    *testShards,
		Plot:          *plotPath,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := loadData(ctx, cfg)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}
	log.Printf("train=%d validation=%d test=%d", len(data.Train), len(data.Validation), len(data.Test))

	net, err := model.New(cfg.HiddenSize, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		log.Fatalf("build network: %v", err)
	}

	runCfg := trainer.RunConfig{
		Epochs:        cfg.Epochs,
		MiniBatchSize: cfg.MiniBatchSize,
		Eta:           cfg.Eta,
		NumWorkers:    cfg.NumWorkers,
		LogEvery:      cfg.LogEvery,
		Seed:          cfg.Seed + 1,
		Logger:        newProgressLogger(os.Stdout),
	}

	res, err := trainer.Run(ctx, net, data, runCfg)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if best, ok := res.History.Best(); ok {
		log.Printf("best epoch=%d accuracy=%.4f", best.Epoch, best.Accuracy())
	}
	if cfg.Plot != "" && len(res.History.Epochs) > 0 {
		if err := res.History.Save(cfg.Plot); err != nil {
			log.Fatalf("write plot: %v", err)
		}
		log.Printf("plot=%s", cfg.Plot)
	}
}

// newProgressLogger writes unprefixed lines so per-epoch progress reads
// "epoch <j>: <correct> / <total>".
func newProgressLogger(w io.Writer) *log.Logger {
	return log.New(w, "", 0)
}

func loadData(ctx context.Context, cfg *config.Config) (trainer.Data, error) {
	opts := dataset.LoadOptions{NumWorkers: cfg.NumWorkers}

	trainRecords, err := loadRecords(ctx, cfg.TrainImages, cfg.TrainLabels, cfg.TrainShards, opts)
	if err != nil {
		return trainer.Data{}, err
	}
	trainRecords, heldOut, err := dataset.Split(trainRecords, cfg.ValidationSize)
	if err != nil {
		return trainer.Data{}, err
	}
	trainRecords = dataset.Limit(trainRecords, cfg.MaxTrain)

	testRecords, err := loadRecords(ctx, cfg.TestImages, cfg.TestLabels, cfg.TestShards, opts)
	if err != nil {
		return trainer.Data{}, err
	}
	testRecords = dataset.Limit(testRecords, cfg.MaxTest)

	var data trainer.Data
	if data.Train, err = dataset.TrainingSamples(trainRecords); err != nil {
		return trainer.Data{}, err
	}
	if data.Validation, err = dataset.TestSamples(heldOut); err != nil {
		return trainer.Data{}, err
	}
	if data.Test, err = dataset.TestSamples(testRecords); err != nil {
		return trainer.Data{}, err
	}
	return data, nil
}

func loadRecords(ctx context.Context, images, labels, shards string, opts dataset.LoadOptions) ([]dataset.Record, error) {
	if shards != "" {
		records, err := dataset.LoadRoot(ctx, shards, opts)
		if err != nil {
			return nil, err
		}
		log.Printf("root=%s records=%d", shards, len(records))
		return records, nil
	}
	return dataset.LoadIDX(images, labels)
}
