// Package convert runs a batch of input lines through fetching, parsing and
// assembly, collecting per-line failures as diagnostics.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"boxlink/internal/collectors"
	"boxlink/internal/logger"
	"boxlink/internal/singbox"
	"boxlink/internal/singbox/option"
	"boxlink/internal/singbox/parser"
)

// Diagnostic kinds.
const (
	KindMalformedLink           = "MalformedLink"
	KindSubscriptionFetchFailed = "SubscriptionFetchFailed"
)

const DefaultConcurrency = 4

// Diagnostic is a user-facing report of one skipped input.
type Diagnostic struct {
	Kind    string
	Source  string
	Message string // already names the source
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// Result is the outcome of one conversion. Config is nil when Convert
// returned an error.
type Result struct {
	Config      *option.Config
	Proxies     []option.Outbound
	Diagnostics []Diagnostic
	Skipped     []string
	Fetches     []FetchStat
}

// FetchStat records one subscription retrieval.
type FetchStat struct {
	URL      string
	Lines    int
	Duration time.Duration
	Err      error
}

// Converter turns raw lines into a routing document.
type Converter struct {
	Collector   collectors.Collector
	Params      map[string]interface{}
	Options     singbox.Options
	Concurrency int
	Dedupe      bool

	// OnFetch, when set, is called after every subscription retrieval.
	OnFetch func(FetchStat)
}

func New(c collectors.Collector, params map[string]interface{}, opts singbox.Options) *Converter {
	return &Converter{
		Collector:   c,
		Params:      params,
		Options:     opts,
		Concurrency: DefaultConcurrency,
	}
}

// Convert expands subscriptions, parses every link and builds the document.
// Per-line failures end up in Result.Diagnostics; the only errors returned are
// singbox.ErrNoValidOutbounds and context cancellation, both with the partial
// Result attached.
func (c *Converter) Convert(ctx context.Context, lines []string) (*Result, error) {
	res := &Result{}

	expanded, err := c.expand(ctx, lines, res)
	if err != nil {
		return res, err
	}
	if c.Dedupe {
		expanded = singbox.Dedupe(expanded)
	}

	for _, line := range expanded {
		out, err := parser.Parse(line)
		switch {
		case err == nil:
			res.Proxies = append(res.Proxies, out)
		case errors.Is(err, parser.ErrUnsupportedScheme):
			logger.Log.Debugf("Skipping unsupported line: %s", parser.Preview(line))
			res.Skipped = append(res.Skipped, line)
		default:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:    KindMalformedLink,
				Source:  parser.Preview(line),
				Message: err.Error(),
			})
		}
	}

	cfg, err := singbox.Build(res.Proxies, c.Options)
	if err != nil {
		return res, err
	}
	res.Config = cfg
	return res, nil
}

// expand replaces every subscription URL with the lines it serves, keeping
// input order. Fetches run concurrently; a failed fetch becomes a diagnostic.
func (c *Converter) expand(ctx context.Context, lines []string, res *Result) ([]string, error) {
	lines = singbox.SplitLines(strings.Join(lines, "\n"))

	fetched := make([][]string, len(lines))
	stats := make([]*FetchStat, len(lines))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)

	for i, line := range lines {
		if !singbox.IsSubscription(line) {
			continue
		}
		if c.Collector == nil {
			stats[i] = &FetchStat{URL: line, Err: collectors.FetchFailed(line, errors.New("no collector configured"))}
			continue
		}
		g.Go(func() error {
			start := time.Now()
			sub, err := c.Collector.Collect(gctx, line, c.Params)
			stat := &FetchStat{URL: line, Lines: len(sub), Duration: time.Since(start), Err: err}
			if err == nil {
				fetched[i] = sub
			}
			stats[i] = stat

			if c.OnFetch != nil {
				mu.Lock()
				c.OnFetch(*stat)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	for i, line := range lines {
		if stat := stats[i]; stat != nil {
			res.Fetches = append(res.Fetches, *stat)
			if stat.Err != nil {
				logger.Log.Debugf("Subscription failed: %v", stat.Err)
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Kind:    KindSubscriptionFetchFailed,
					Source:  line,
					Message: stat.Err.Error(),
				})
				continue
			}
			// nested subscription URLs are not followed
			out = append(out, fetched[i]...)
			continue
		}
		out = append(out, line)
	}
	return out, nil
}
