// Command shpinfo inspects shapefiles: headers, schemas, records, selections
// and whole directory trees.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// globals holds the flags shared by every command.
type globals struct {
	logLevel    string
	encoding    string
	noNormalize bool

	logger log.Logger
	fs     afero.Fs
}

func (g *globals) setup(*kingpin.ParseContext) error {
	var opt level.Option
	switch g.logLevel {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	default:
		opt = level.AllowError()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, opt)
	g.logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	g.fs = afero.NewOsFs()
	return nil
}

func (g *globals) parseOptions() (shapefile.ParseOptions, error) {
	opts := shapefile.DefaultParseOptions()
	opts.Logger = g.logger
	opts.Normalize = !g.noNormalize
	if g.encoding != "" {
		enc, err := shapefile.CodePageEncoding(g.encoding)
		if err != nil {
			return opts, err
		}
		opts.Encoding = enc
	}
	return opts, nil
}

func (g *globals) parser() (shapefile.Parser, error) {
	opts, err := g.parseOptions()
	if err != nil {
		return nil, err
	}
	return &optionParser{Parser: shapefile.NewParser(g.fs), opts: opts}, nil
}

// optionParser applies the command-line parse options to every Parse.
type optionParser struct {
	shapefile.Parser
	opts shapefile.ParseOptions
}

func (p *optionParser) Parse(path string) (*shapefile.ShapeFile, error) {
	return p.Parser.ParseWithOptions(path, p.opts)
}

func main() {
	app := kingpin.New("shpinfo", "Inspect ESRI shapefiles.")
	app.HelpFlag.Short('h')

	g := &globals{}
	app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("warn").EnumVar(&g.logLevel, "debug", "info", "warn", "error")
	app.Flag("encoding", "Code page of attribute text, overriding .cpg files (e.g. 1252, ISO-8859-1).").
		StringVar(&g.encoding)
	app.Flag("no-normalize", "Keep longitudes as stored when bounds cross the antimeridian.").
		BoolVar(&g.noNormalize)
	app.PreAction(g.setup)

	addInfoCommand(app, g)
	addRecordsCommand(app, g)
	addSelectCommand(app, g)
	addScanCommand(app, g)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func formatRect(r shapefile.Rectangle) string {
	return fmt.Sprintf("x %.6f to %.6f, y %.6f to %.6f", r.MinX, r.MaxX, r.MinY, r.MaxY)
}

// parseRect reads "minx,miny,maxx,maxy".
func parseRect(s string) (shapefile.Rectangle, error) {
	var r shapefile.Rectangle
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return r, fmt.Errorf("sector %q: want minx,miny,maxx,maxy", s)
	}
	_, err := fmt.Sscanf(strings.Join(parts, " "), "%g %g %g %g", &r.MinX, &r.MinY, &r.MaxX, &r.MaxY)
	if err != nil {
		return r, fmt.Errorf("sector %q: %w", s, err)
	}
	if r.IsEmpty() {
		return r, fmt.Errorf("sector %q is empty", s)
	}
	return r, nil
}
