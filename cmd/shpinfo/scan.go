package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// scanCommand indexes a directory tree and optionally queries it.
type scanCommand struct {
	g        *globals
	root     *string
	workers  *int
	sector   *string
	load     *bool
	maxFiles *int
	maxMem   *string
	metrics  *bool
}

func (cmd *scanCommand) run(*kingpin.ParseContext) error {
	parseOpts, err := cmd.g.parseOptions()
	if err != nil {
		return err
	}
	maxMem, err := humanize.ParseBytes(*cmd.maxMem)
	if err != nil {
		return fmt.Errorf("max-memory: %w", err)
	}

	reg := prometheus.NewRegistry()
	parseOpts.Metrics = shapefile.NewMetrics(reg)

	opts := shapefile.DefaultLibraryOptions()
	opts.Parse = parseOpts
	opts.Load.Workers = *cmd.workers
	opts.Load.Logger = cmd.g.logger
	opts.Cache.MaxFiles = *cmd.maxFiles
	opts.Cache.MaxMemory = int64(maxMem)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lib, err := shapefile.NewLibrary(ctx, cmd.g.fs, *cmd.root, opts)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", *cmd.root, err)
	}

	entries := lib.Entries()
	var inSector []*shapefile.Record
	if *cmd.sector != "" {
		sector, err := parseRect(*cmd.sector)
		if err != nil {
			return err
		}
		entries = lib.Query(sector)
		if *cmd.load {
			if inSector, err = lib.RecordsInSector(sector); err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}
		}
	}

	bold := color.New(color.Bold)
	bold.Printf("%s: %d files, %d skipped\n", *cmd.root, lib.Len(), len(lib.Skipped()))
	if b, ok := lib.Bounds(); ok {
		fmt.Printf("\tbounds: %s\n", formatRect(b))
	}
	for _, e := range entries {
		records := "unindexed"
		if e.Records >= 0 {
			records = humanize.Comma(int64(e.Records)) + " records"
		}
		fmt.Printf("\t%s: %v, %s, %d fields, %v\n",
			e.Path, e.ShapeType, records, e.Fields, humanize.IBytes(uint64(e.FileLength)))
	}
	for _, err := range lib.Skipped() {
		color.New(color.FgYellow).Printf("\tskipped: %v\n", err)
	}

	if *cmd.load {
		fmt.Printf("\t%d records in sector\n", len(inSector))
	}

	stats := lib.Stats().Cache
	if stats.Hits+stats.Misses > 0 {
		fmt.Printf("\tcache: %d files, %v of %v, hit rate %.0f%%\n",
			stats.Files, humanize.IBytes(uint64(stats.UsedMemory)), humanize.IBytes(uint64(stats.MaxMemory)),
			stats.HitRate()*100)
	}

	if *cmd.metrics {
		return printMetrics(reg)
	}
	return nil
}

// printMetrics writes the counter and histogram series of reg, one per line.
func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	color.New(color.Bold).Println("Metrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels string
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("\t%s%s: %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Printf("\t%s%s: count %d, sum %g\n", mf.GetName(), labels, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func addScanCommand(app *kingpin.Application, g *globals) {
	cmd := &scanCommand{g: g}
	scan := app.Command("scan", "Index every shapefile under a directory.").Action(cmd.run)
	cmd.root = scan.Arg("dir", "The directory to scan.").Required().ExistingDir()
	cmd.workers = scan.Flag("workers", "Number of files indexed concurrently.").Default(fmt.Sprint(runtime.NumCPU())).Int()
	cmd.sector = scan.Flag("sector", "Only list files intersecting minx,miny,maxx,maxy.").String()
	cmd.load = scan.Flag("load", "Decode the records of the files intersecting --sector.").Bool()
	cmd.maxFiles = scan.Flag("cache.max-files", "Maximum number of decoded files kept in memory.").Default("128").Int()
	cmd.maxMem = scan.Flag("cache.max-memory", "Maximum estimated memory of decoded files.").Default("512MiB").String()
	cmd.metrics = scan.Flag("metrics", "Print decoder and cache metrics when done.").Bool()
}
