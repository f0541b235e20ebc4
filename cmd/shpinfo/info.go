package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// infoCommand prints the headers and schema of each file.
type infoCommand struct {
	g     *globals
	files *[]string
}

func (cmd *infoCommand) run(*kingpin.ParseContext) error {
	p, err := cmd.g.parser()
	if err != nil {
		return err
	}
	for _, name := range *cmd.files {
		sf, err := p.Parse(name)
		if err != nil {
			return fmt.Errorf("failed to open shapefile: %w", err)
		}
		cmd.printInfo(name, sf)
		sf.Close()
	}
	return nil
}

func (cmd *infoCommand) printInfo(name string, sf *shapefile.ShapeFile) {
	bold := color.New(color.Bold)
	h := sf.Header()

	bold.Printf("%s:\n", name)
	fmt.Printf("\tshape type: %v, version: %d, size: %v\n",
		h.ShapeType, h.Version, humanize.IBytes(uint64(h.FileLength)))
	fmt.Printf("\tbounds: %s\n", formatRect(sf.BoundingRectangle()))
	if h.ZRange != [2]float64{} {
		fmt.Printf("\tz range: %g to %g\n", h.ZRange[0], h.ZRange[1])
	}
	if h.MRange != [2]float64{} {
		fmt.Printf("\tm range: %g to %g\n", h.MRange[0], h.MRange[1])
	}
	if idx := sf.Index(); idx != nil {
		fmt.Printf("\tindexed records: %s\n", humanize.Comma(int64(len(idx))))
	} else {
		fmt.Printf("\tindexed records: no index\n")
	}
	if params := sf.ProjectionParams(); params != nil {
		fmt.Printf("\tprojection: %s\n", truncate(string(params), 72))
	}

	th, ok := sf.TableHeader()
	if !ok {
		fmt.Printf("\tattributes: none\n")
		return
	}
	bold.Printf("\tattributes: %s rows, updated %s\n",
		humanize.Comma(int64(th.RecordCount)), th.LastModified.Format("2006-01-02"))
	for _, f := range sf.Schema() {
		fmt.Printf("\t\tname: %s, type: %v, length: %d, decimals: %d\n",
			f.Name, f.Type, f.Length, f.Decimals)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func addInfoCommand(app *kingpin.Application, g *globals) {
	cmd := &infoCommand{g: g}
	info := app.Command("info", "Print the headers and attribute schema of shapefiles.").Action(cmd.run)
	cmd.files = info.Arg("file", "The .shp files to inspect.").Required().ExistingFiles()
}
