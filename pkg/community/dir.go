package community

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSource reads one community per regular file in a directory. The file
// name is the community name.
type DirSource struct {
	dir     string
	exclude excludeSet
}

// NewDirSource creates a DirSource for dir, skipping the excluded names
func NewDirSource(dir string, exclude []string) *DirSource {
	return &DirSource{
		dir:     dir,
		exclude: newExcludeSet(exclude),
	}
}

// Communities reads and decodes every community file in the directory
func (s *DirSource) Communities(ctx context.Context) ([]Community, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read community directory: %w", err)
	}

	communities := make([]Community, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		// Hidden files and subdirectories (e.g. .git) are not communities
		if entry.IsDir() || strings.HasPrefix(name, ".") || s.exclude.has(name) {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read community %s: %w", name, err)
		}
		communities = append(communities, Decode(name, raw))
	}

	sortByName(communities)
	return communities, nil
}
