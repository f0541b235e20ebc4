package shapefile

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// LoadOptions controls bulk loading and its error handling.
type LoadOptions struct {
	// Parallel enables concurrent loading, one file per worker.
	Parallel bool

	// Workers is the number of concurrent loaders.
	// If 0, defaults to runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors continues past files that fail; their errors are collected.
	// When false, the first failure cancels the remaining work.
	SkipErrors bool

	// Progress is called after each file finishes, successfully or not,
	// with the number of files processed so far.
	Progress func(loaded, total int)

	// Logger receives one warning per failed file.
	Logger log.Logger
}

// DefaultLoadOptions returns load options with defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Logger:     log.NewNopLogger(),
	}
}

// LoadFiles parses and fully decodes many shapefiles. Parallelism is across
// files; each file is decoded by a single goroutine.
//
// The returned files keep the order of paths, minus failures, and hold no
// open file handles. With SkipErrors the errors of failed files are returned
// alongside; without it the first error is returned alone and no files are.
//
// Example:
//
//	paths, _ := shapefile.Discover(fs, "data")
//	files, errs := shapefile.LoadFiles(ctx, paths, shapefile.NewParser(fs), shapefile.LoadOptions{
//	    Parallel:   true,
//	    SkipErrors: true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\rLoading: %d/%d", loaded, total)
//	    },
//	})
func LoadFiles(ctx context.Context, paths []string, p Parser, opts LoadOptions) ([]*ShapeFile, []error) {
	if len(paths) == 0 {
		return []*ShapeFile{}, nil
	}

	loaded := make([]*ShapeFile, len(paths))
	errs := forEachPath(ctx, paths, opts, func(i int, path string) error {
		sf, err := loadFully(p, path)
		if err != nil {
			return err
		}
		loaded[i] = sf
		return nil
	})
	if len(errs) > 0 && !opts.SkipErrors {
		return nil, errs
	}

	files := make([]*ShapeFile, 0, len(paths))
	for _, sf := range loaded {
		if sf != nil {
			files = append(files, sf)
		}
	}
	return files, errs
}

// forEachPath runs fn for every path on a bounded worker pool. fn must only
// write state owned by index i. Errors are annotated with their path.
func forEachPath(ctx context.Context, paths []string, opts LoadOptions, fn func(i int, path string) error) []error {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	workers := 1
	if opts.Parallel {
		workers = opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	var (
		mu   sync.Mutex
		done int
		errs []error
	)
	finish := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if err != nil {
			errs = append(errs, err)
		}
		if opts.Progress != nil {
			opts.Progress(done, len(paths))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(i, path)
			if err != nil {
				err = errors.Wrap(err, path)
				level.Warn(logger).Log("msg", "failed to load shapefile", "path", path, "err", err)
			}
			finish(err)
			if err != nil && !opts.SkipErrors {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !opts.SkipErrors {
		return []error{err}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
