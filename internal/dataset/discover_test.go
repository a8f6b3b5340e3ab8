package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverShardsBasic(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "shard-000000.tar"))
	mustWrite(t, filepath.Join(dir, "nested", "shard-000001.tar"))
	mustWrite(t, filepath.Join(dir, "ignore.txt"))
	mustWrite(t, filepath.Join(dir, "shard-1.tar"))

	shards, err := DiscoverShards(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "nested", "shard-000001.tar"),
		filepath.Join(dir, "shard-000000.tar"),
	}, shards)
}

func TestDiscoverShardsMissingRoot(t *testing.T) {
	_, err := DiscoverShards(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorContains(t, err, "discover shards")
}
