package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/beetlebugorg/shapefile/pkg/shapefile"
)

// selectCommand filters the records of one file by attribute and sector.
type selectCommand struct {
	g            *globals
	file         *string
	field        *string
	value        *string
	acceptAbsent *bool
	sector       *string
	limit        *int
	points       *bool
}

func (cmd *selectCommand) run(*kingpin.ParseContext) error {
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

	if *cmd.field != "" {
		records = shapefile.SelectByAttribute(records, *cmd.field, parseValue(*cmd.value), *cmd.acceptAbsent)
	}
	if *cmd.sector != "" {
		sector, err := parseRect(*cmd.sector)
		if err != nil {
			return err
		}
		records = shapefile.SelectBySector(records, sector)
	}

	fmt.Printf("%d of %d records selected\n", len(records), sf.Len())
	if b, ok := shapefile.ComputeBounds(records); ok {
		fmt.Printf("bounds: %s\n", formatRect(b))
	}
	view := shapefile.ViewFromRecords(records)
	fmt.Printf("parts: %d, points: %d\n", view.Len(), view.PointCount())

	printRecords(records, *cmd.limit, *cmd.points)
	return nil
}

// parseValue guesses the attribute type of a command-line value: an integer,
// a number, a YYYY-MM-DD date, a boolean, or else a string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	switch s {
	case "true", "T", "Y":
		return true
	case "false", "F", "N":
		return false
	}
	return s
}

func addSelectCommand(app *kingpin.Application, g *globals) {
	cmd := &selectCommand{g: g}
	sel := app.Command("select", "Select records by attribute value and sector.").Action(cmd.run)
	cmd.file = sel.Arg("file", "The .shp file to select from.").Required().ExistingFile()
	cmd.field = sel.Flag("field", "Attribute field to compare.").String()
	cmd.value = sel.Flag("value", "Value the field must equal; strings compare case-insensitively.").String()
	cmd.acceptAbsent = sel.Flag("accept-absent", "Keep records that lack the field.").Bool()
	cmd.sector = sel.Flag("sector", "Rectangle minx,miny,maxx,maxy the records must fall in.").String()
	cmd.limit = sel.Flag("limit", "Maximum number of records to print, 0 for all.").Default("50").Int()
	cmd.points = sel.Flag("points", "Print the coordinates of every part.").Bool()
}
