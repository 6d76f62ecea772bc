package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatLatency(r ranking.ProbeResult) string {
	if !r.Available() {
		return "-"
	}
	return fmt.Sprintf("%.1fms", float64(r.Time)/float64(time.Millisecond))
}

func printResults(w io.Writer, results []ranking.ProbeResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No gateways available")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tGATEWAY\tSTATUS\tLATENCY")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.URL, r.Status, formatLatency(r))
	}
	return tw.Flush()
}

func printList(w io.Writer, title string, urls []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(urls))
	for _, u := range urls {
		fmt.Fprintf(w, "  %s\n", u)
	}
}
