package http

import (
	"context"

	"boxlink/internal/collectors"
	"boxlink/internal/logger"
)

// URLCollector fetches a subscription URL directly.
type URLCollector struct{}

func (c *URLCollector) Collect(ctx context.Context, target string, params map[string]interface{}) ([]string, error) {
	client, err := collectors.NewHTTPClient(params)
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}

	ua := collectors.StringParam(params, "user_agent")
	if ua == "" {
		ua = collectors.DefaultUserAgent
	}

	logger.Log.Debugf("Fetching URL: %s", target)
	body, err := collectors.Fetch(ctx, client, target, ua)
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}

	lines, err := collectors.DecodeBody(string(body))
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}
	logger.Log.Debugf("Subscription %s yielded %d lines", target, len(lines))
	return lines, nil
}

func init() {
	collectors.Register("http", func() collectors.Collector {
		return &URLCollector{}
	})
}
