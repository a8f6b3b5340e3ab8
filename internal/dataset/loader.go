package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// LoadOptions configures LoadShards.
type LoadOptions struct {
	NumWorkers int
	PendingCap int
}

// LoadShards reads every shard on up to NumWorkers goroutines and returns
// the records concatenated in shard order.
func LoadShards(ctx context.Context, shards []string, opts LoadOptions) ([]Record, error) {
	if len(shards) == 0 {
		return nil, errors.New("loader: no shards provided")
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 1
	}

	perShard := make([][]Record, len(shards))
	p := pool.New().WithMaxGoroutines(opts.NumWorkers).WithErrors().WithContext(ctx).WithCancelOnError()
	for i, path := range shards {
		i, path := i, path
		p.Go(func(ctx context.Context) error {
			records, err := readShard(ctx, path, opts.PendingCap)
			if err != nil {
				return fmt.Errorf("shard %s: %w", path, err)
			}
			perShard[i] = records
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, records := range perShard {
		total += len(records)
	}
	out := make([]Record, 0, total)
	for _, records := range perShard {
		out = append(out, records...)
	}
	return out, nil
}

func readShard(ctx context.Context, path string, pendingCap int) ([]Record, error) {
	records, errCh := StreamShard(ctx, path, pendingCap)
	var out []Record
	for r := range records {
		out = append(out, r)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRoot discovers and loads all shards beneath root.
func LoadRoot(ctx context.Context, root string, opts LoadOptions) ([]Record, error) {
	shards, err := DiscoverShards(root)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("loader: no shards discovered under %s", root)
	}
	return LoadShards(ctx, shards, opts)
}
