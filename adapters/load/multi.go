package load

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"tabkit/domain/table"
)

// maxConcurrentLoads bounds the number of files read at once by Glob.
const maxConcurrentLoads = 4

// Glob loads every file matching the pattern concurrently and concatenates
// the results in lexical path order. A "source_file" column records the base
// name each row came from. All matched files must share a schema.
func Glob(ctx context.Context, pattern string, opts Options) (*table.Dataset, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("glob: no files match %q", pattern)
	}
	sort.Strings(paths)

	parts := make([]*table.Dataset, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := Load(path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parts[i] = withSourceColumn(ds, filepath.Base(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return table.Concat(parts[0], parts[1:]...)
}

func withSourceColumn(ds *table.Dataset, source string) *table.Dataset {
	values := make([]string, ds.RowCount())
	for i := range values {
		values[i] = source
	}
	out := ds.Clone()
	out.Columns = append(out.Columns, table.NewCategoricalColumn("source_file", values, nil))
	return out
}
