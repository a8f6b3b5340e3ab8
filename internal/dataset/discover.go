package dataset

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
)

var shardRegexp = regexp.MustCompile(`^shard-[0-9]{6,}\.tar$`)

// DiscoverShards returns the shard-NNNNNN.tar files beneath root in lexical
// path order, which fixes the sample order of LoadShards.
func DiscoverShards(root string) ([]string, error) {
	var shards []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && shardRegexp.MatchString(d.Name()) {
			shards = append(shards, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover shards: %w", err)
	}
	sort.Strings(shards)
	return shards, nil
}
