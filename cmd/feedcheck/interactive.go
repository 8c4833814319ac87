package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"kavyashar.org/intake/internal/constraint"
	"kavyashar.org/intake/internal/feed"
)

const lookupWait = 5 * time.Second

const interactiveHelp = `commands:
  stop <code>        look up a stop code
  search <text>      search stops by name
  pick <n>           select result n of the last search
  line <number>      select a line
  operator <id>      select an operator
  alt <value>        select an alternative
  reset              clear every selection
  show               print the current selection
  quit`

// interact drives one form session from line-oriented commands. Debounced
// lookups are awaited so their results print in command order.
func interact(in io.Reader, out io.Writer, source constraint.Source, opts constraint.SessionOptions) error {
	results := make(chan string, 1)
	var lastSearch []feed.Stop

	opts.OnStopLookup = func(r constraint.StopLookup) {
		results <- fmt.Sprintf("stop %s: %s", r.Code, r.Status)
	}
	opts.OnSearch = func(r constraint.SearchResult) {
		var b strings.Builder
		fmt.Fprintf(&b, "search %q: %s", r.Query, r.Status)
		for i, s := range r.Stops {
			fmt.Fprintf(&b, "\n  %d) %s %s (%s)", i+1, s.Code, s.Name, s.City)
		}
		lastSearch = r.Stops
		results <- b.String()
	}

	session := constraint.NewSession(source, opts)
	defer session.Close()

	await := func() {
		select {
		case msg := <-results:
			fmt.Fprintln(out, msg)
		case <-time.After(lookupWait):
			fmt.Fprintln(out, "lookup timed out")
		}
	}

	fmt.Fprintln(out, interactiveHelp)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
			continue
		case "stop":
			session.TypeStopCode(arg)
			await()
			printSnapshot(out, session.Snapshot())
		case "search":
			session.SearchStops(arg)
			await()
		case "pick":
			var n int
			if _, err := fmt.Sscanf(arg, "%d", &n); err != nil || n < 1 || n > len(lastSearch) {
				fmt.Fprintln(out, "no such result")
				continue
			}
			stop := lastSearch[n-1]
			printSnapshot(out, session.SelectStop(&stop))
		case "line":
			printSnapshot(out, session.SelectLine(arg))
		case "operator":
			printSnapshot(out, session.SelectOperator(arg))
		case "alt":
			printSnapshot(out, session.SelectAlternative(arg))
		case "reset":
			printSnapshot(out, session.Reset())
		case "show":
			printSnapshot(out, session.Snapshot())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(out, interactiveHelp)
		}
	}
	return scanner.Err()
}

func printSnapshot(out io.Writer, s constraint.Snapshot) {
	stop := "-"
	if s.HasStop() {
		stop = s.Stop.Code
	}
	fmt.Fprintf(out, "[%s] stop=%s line=%s operator=%s alternative=%s\n",
		s.Phase, stop, orDash(s.Line), orDash(s.OperatorID), orDash(s.Alternative))
	if len(s.LinesAtStop) > 0 {
		fmt.Fprintf(out, "  lines at stop: %s\n", strings.Join(s.LinesAtStop, ", "))
	}
	if len(s.Operators) > 0 {
		ids := make([]string, 0, len(s.Operators))
		for _, op := range s.Operators {
			ids = append(ids, op.ID+" "+op.Name)
		}
		fmt.Fprintf(out, "  operators: %s\n", strings.Join(ids, ", "))
	}
	for _, alt := range s.Alternatives {
		fmt.Fprintf(out, "  alternative %s: %s\n", alt.Value, alt.Label)
	}
	if len(s.Cleared) > 0 {
		cleared := make([]string, 0, len(s.Cleared))
		for _, f := range s.Cleared {
			cleared = append(cleared, string(f))
		}
		fmt.Fprintf(out, "  cleared: %s\n", strings.Join(cleared, ", "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
