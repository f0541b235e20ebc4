package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// recordsCommand lists the records of one file.
type recordsCommand struct {
	g      *globals
	file   *string
	limit  *int
	points *bool
}

func (cmd *recordsCommand) run(*kingpin.ParseContext) error {
	p, err := cmd.g.parser()
	if err != nil {
		return err
	}
	sf, err := p.Parse(*cmd.file)
	if err != nil {
		return fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer sf.Close()

	records, err := sf.Records()
	if err != nil {
		return fmt.Errorf("failed to decode records: %w", err)
	}
	printRecords(records, *cmd.limit, *cmd.points)
	for _, w := range sf.Warnings() {
		fmt.Printf("warning: %v\n", w)
	}
	return nil
}

func printRecords(records []*shapefile.Record, limit int, points bool) {
	for i, rec := range records {
		if limit > 0 && i >= limit {
			fmt.Printf("... %d more\n", len(records)-limit)
			return
		}
		printRecord(rec, points)
	}
}

func printRecord(rec *shapefile.Record, points bool) {
	fmt.Printf("#%d %v", rec.Number(), rec.ShapeType())
	if x, y, ok := rec.Point(); ok {
		fmt.Printf(" (%g %g)", x, y)
		if z, ok := rec.Z(); ok {
			fmt.Printf(" z=%g", z)
		}
		if m, ok := rec.M(); ok {
			fmt.Printf(" m=%g", m)
		}
	} else if !rec.IsNull() {
		fmt.Printf(" parts=%d points=%d", rec.NumberOfParts(), rec.NumberOfPoints())
		if b, ok := rec.Bounds(); ok {
			fmt.Printf(" bounds=[%s]", formatRect(b))
		}
	}
	if row := rec.Attributes(); row != nil {
		fmt.Printf(" %s", formatRow(row))
	}
	fmt.Println()

	if !points || rec.IsNull() {
		return
	}
	for i, part := range rec.Parts() {
		coords := make([]string, 0, part.Len())
		for _, p := range part.Points() {
			coords = append(coords, fmt.Sprintf("%g %g", p.X, p.Y))
		}
		fmt.Printf("\tpart %d: %s\n", i, strings.Join(coords, ", "))
	}
}

func formatRow(row *shapefile.Row) string {
	names := make([]string, 0, len(row.Values))
	for name := range row.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, len(names))
	for i, name := range names {
		v := row.Values[name]
		if t, ok := v.(time.Time); ok {
			v = t.Format("2006-01-02")
		}
		fields[i] = fmt.Sprintf("%s=%v", name, v)
	}
	return strings.Join(fields, " ")
}

func addRecordsCommand(app *kingpin.Application, g *globals) {
	cmd := &recordsCommand{g: g}
	records := app.Command("records", "List the records of a shapefile.").Action(cmd.run)
	cmd.file = records.Arg("file", "The .shp file to list.").Required().ExistingFile()
	cmd.limit = records.Flag("limit", "Maximum number of records to print, 0 for all.").Default("50").Int()
	cmd.points = records.Flag("points", "Print the coordinates of every part.").Bool()
}
