package metrics

import (
	"boxlink/internal/convert"
	"boxlink/internal/singbox/option"
)

// RecordResult folds a finished conversion into the collector.
func (c *Collector) RecordResult(res *convert.Result) {
	for _, f := range res.Fetches {
		c.RecordFetch(f.Duration, f.Err)
	}
	for _, p := range res.Proxies {
		c.RecordProxy(p.Type(), option.TransportType(p))
	}
	for _, d := range res.Diagnostics {
		c.RecordDiagnostic(d.Kind)
	}
	c.RecordSkipped(len(res.Skipped))

	if res.Config == nil {
		return
	}
	var final []option.Outbound
	for _, o := range res.Config.Outbounds {
		if option.IsProxy(o) {
			final = append(final, o)
		}
	}
	renamed := 0
	for i, p := range res.Proxies {
		if i < len(final) && final[i].Tag() != p.Tag() {
			renamed++
		}
	}
	c.RecordRenamed(renamed)
}
