package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

func printStatus(out io.Writer, status map[feed.TableID]gtfs.TableStatus) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSTATE\tROWS\tDROPPED\tREASON")
	for _, table := range feed.AllTables {
		st := status[table]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", table, st.State, st.Rows, st.Dropped, st.Reason)
	}
	_ = tw.Flush()
}

func printStop(out io.Writer, source *gtfs.Manager, code string) {
	ix, state := source.Snapshot(feed.Stops, feed.StopRoutes)
	if state != gtfs.StateReady {
		fmt.Fprintf(out, "stop %s: stops are %s\n", code, state)
		return
	}
	stop, ok := ix.StopByCode(code)
	if !ok {
		fmt.Fprintf(out, "stop %s: not found\n", code)
		return
	}
	fmt.Fprintf(out, "stop %s: %s (%s) lines: %s\n",
		code, stop.Name, stop.City, strings.Join(ix.RoutesForStop(stop.ID), ", "))
}

func printLine(out io.Writer, source *gtfs.Manager, line string) {
	ix, state := source.Snapshot(feed.Routes, feed.Agencies)
	if state != gtfs.StateReady {
		fmt.Fprintf(out, "line %s: routes are %s\n", line, state)
		return
	}
	if !ix.HasLine(line) {
		fmt.Fprintf(out, "line %s: not found\n", line)
		return
	}
	fmt.Fprintf(out, "line %s: cities: %s\n", line, strings.Join(ix.CitiesForLine(line), ", "))
	for _, op := range ix.OperatorsForLine(line) {
		fmt.Fprintf(out, "  operator %s %s\n", op.ID, op.Name)
		for _, alt := range ix.Alternatives(line, op.ID) {
			fmt.Fprintf(out, "    %s\t%s\n", alt.Value, alt.Label)
		}
	}
}
