package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/SanteonNL/ahcd/cmd/ahcd/catalog"
)

func runYears(stdout io.Writer) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tRECORD LENGTH\tLAYOUT\tURL")
	for _, year := range catalog.YearsAvailable {
		length, err := catalog.RecordLength(year)
		if err != nil {
			return err
		}
		info, err := catalog.SourceFileInfo(year)
		if err != nil {
			return err
		}
		_, err = e.layouts.Schema(year)
		fmt.Fprintf(tw, "%d\t%d\t%t\t%s\n", year, length, err == nil, info.URL)
	}
	return tw.Flush()
}
