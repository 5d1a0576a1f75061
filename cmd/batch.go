package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
)

var batchFile string

// batchSpec is the shape of a batch query file.
type batchSpec struct {
	Queries []model.Query `yaml:"queries"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run multiple generation queries from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queries, err := loadBatchFile(batchFile)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		return processBatch(ctx, env.Generator, queries, cfg.Batch.MaxConcurrentQueries)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "queries.yaml", "YAML file with a queries list")
	rootCmd.AddCommand(batchCmd)
}

// loadBatchFile reads and validates the batch query file.
func loadBatchFile(path string) ([]model.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}

	var spec batchSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrapf(err, "batch: parse %s", path)
	}
	if len(spec.Queries) == 0 {
		return nil, eris.Errorf("batch: %s contains no queries", path)
	}

	for i, q := range spec.Queries {
		if err := q.Validate(); err != nil {
			return nil, eris.Wrapf(err, "batch: query %d", i+1)
		}
	}
	return spec.Queries, nil
}

// processBatch runs queries concurrently with a bounded worker count.
// Individual query failures never abort the batch.
func processBatch(ctx context.Context, gen *pipeline.Generator, queries []model.Query, concurrency int) error {
	zap.L().Info("processing batch",
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var totalLeads atomic.Int64

	for _, q := range queries {
		g.Go(func() error {
			log := zap.L().With(zap.String("method", string(q.Method)))

			summary := gen.Generate(gctx, q, "")
			if summary.Status == pipeline.StatusError {
				failed.Add(1)
				log.Error("batch query failed", zap.String("message", summary.Message))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			totalLeads.Add(int64(summary.Count))
			log.Info("batch query complete", zap.Int("leads", summary.Count))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("leads", totalLeads.Load()),
	)
	return nil
}
