package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
)

// Collector accumulates statistics for one conversion batch.
type Collector struct {
	mu sync.Mutex

	// Fetch latency (successes only)
	latencies []time.Duration

	protocolCounts   map[string]int
	transportCounts  map[string]int
	diagnosticCounts map[string]int
	skipped          int
	renamed          int

	// Fetch errors grouped by cause
	errorCounts map[string]int
	totalErrors int
}

func New() *Collector {
	return &Collector{
		protocolCounts:   make(map[string]int),
		transportCounts:  make(map[string]int),
		diagnosticCounts: make(map[string]int),
		errorCounts:      make(map[string]int),
	}
}

func (c *Collector) RecordFetch(duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.latencies = append(c.latencies, duration)
		return
	}
	c.totalErrors++
	c.errorCounts[classify(err)]++
}

// RecordProxy counts one parsed outbound by protocol and transport.
func (c *Collector) RecordProxy(protocol, transport string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.protocolCounts[protocol]++
	if transport == "" {
		transport = "tcp"
	}
	c.transportCounts[transport]++
}

func (c *Collector) RecordDiagnostic(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnosticCounts[kind]++
}

func (c *Collector) RecordSkipped(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped += n
}

// RecordRenamed counts tags rewritten to resolve collisions.
func (c *Collector) RecordRenamed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renamed += n
}

// Total returns the number of parsed proxies.
func (c *Collector) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Sum(lo.Values(c.protocolCounts))
}

func classify(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		return "Timeout"
	case strings.Contains(msg, "refused"):
		return "Conn Refused"
	case strings.Contains(msg, "reset"):
		return "Conn Reset"
	case strings.Contains(msg, "no such host"):
		return "DNS Error"
	case strings.Contains(msg, "status code"):
		return "HTTP Status"
	case strings.Contains(msg, "base64") || strings.Contains(msg, "contents") || strings.Contains(msg, "body"):
		return "Bad Content"
	}
	return "Unknown"
}

func (c *Collector) PrintReport(out io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "\n📊 \033[1mCONVERSION REPORT\033[0m")
	fmt.Fprintln(out, "────────────────────────────────────────")

	// 1. Inventory
	fmt.Fprintln(w, "\033[1;36m[ OUTBOUNDS ]\033[0m\t")
	fmt.Fprintf(w, "  Total Proxies:\t%d\n", lo.Sum(lo.Values(c.protocolCounts)))
	for _, k := range sortedKeys(c.protocolCounts) {
		fmt.Fprintf(w, "  %s:\t%d\n", k, c.protocolCounts[k])
	}
	if c.renamed > 0 {
		fmt.Fprintf(w, "  Renamed (tag collision):\t%d\n", c.renamed)
	}
	fmt.Fprintln(w, "\t")

	fmt.Fprintln(w, "\033[1;36m[ TRANSPORTS ]\033[0m\t")
	for _, k := range sortedKeys(c.transportCounts) {
		fmt.Fprintf(w, "  %s:\t%d\n", k, c.transportCounts[k])
	}
	fmt.Fprintln(w, "\t")

	// 2. Problems
	fmt.Fprintln(w, "\033[1;36m[ DIAGNOSTICS ]\033[0m\t")
	fmt.Fprintf(w, "  Unsupported Lines:\t%d\n", c.skipped)
	for _, k := range sortedKeys(c.diagnosticCounts) {
		fmt.Fprintf(w, "  %s:\t%d\n", k, c.diagnosticCounts[k])
	}
	fmt.Fprintln(w, "\t")

	// 3. Subscriptions
	if len(c.latencies) > 0 || c.totalErrors > 0 {
		fmt.Fprintln(w, "\033[1;36m[ SUBSCRIPTIONS ]\033[0m\t")
		fmt.Fprintf(w, "  Fetched:\t%d\n", len(c.latencies))
		fmt.Fprintf(w, "  Failed:\t%d\n", c.totalErrors)
		if len(c.latencies) > 0 {
			sorted := append([]time.Duration(nil), c.latencies...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			fmt.Fprintf(w, "  Avg Duration:\t%v\n", average(sorted).Round(time.Millisecond))
			fmt.Fprintf(w, "  p50 (Median):\t%v\n", sorted[len(sorted)/2].Round(time.Millisecond))
			fmt.Fprintf(w, "  Slowest:\t%v\n", sorted[len(sorted)-1].Round(time.Millisecond))
		}
		for _, k := range sortedKeys(c.errorCounts) {
			fmt.Fprintf(w, "  %s:\t%d\n", k, c.errorCounts[k])
		}
	}

	w.Flush()
	fmt.Fprintln(out, "")
}

func sortedKeys(m map[string]int) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func average(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return time.Duration(int64(sum) / int64(len(d)))
}
