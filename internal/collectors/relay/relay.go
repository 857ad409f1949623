// Package relay fetches subscriptions through an allorigins-style CORS relay
// that wraps the upstream body in {"contents": ...}.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"boxlink/internal/collectors"
	"boxlink/internal/logger"
)

const DefaultRelayURL = "https://api.allorigins.win/get"

type RelayCollector struct{}

type relayResponse struct {
	Contents *string `json:"contents"`
}

func (c *RelayCollector) Collect(ctx context.Context, target string, params map[string]interface{}) ([]string, error) {
	relayURL := collectors.StringParam(params, "relay_url")
	if relayURL == "" {
		relayURL = DefaultRelayURL
	}
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, collectors.FetchFailed(target, fmt.Errorf("invalid relay url: %w", err))
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()

	client, err := collectors.NewHTTPClient(params)
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}
	ua := collectors.StringParam(params, "user_agent")
	if ua == "" {
		ua = collectors.DefaultUserAgent
	}

	logger.Log.Debugf("Fetching %s via relay %s", target, relayURL)
	body, err := collectors.Fetch(ctx, client, u.String(), ua)
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}

	var resp relayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, collectors.FetchFailed(target, fmt.Errorf("relay response: %w", err))
	}
	if resp.Contents == nil || *resp.Contents == "" {
		return nil, collectors.FetchFailed(target, fmt.Errorf("relay returned no contents"))
	}

	lines, err := collectors.DecodeBody(*resp.Contents)
	if err != nil {
		return nil, collectors.FetchFailed(target, err)
	}
	return lines, nil
}

func init() {
	collectors.Register("allorigins", func() collectors.Collector {
		return &RelayCollector{}
	})
}
