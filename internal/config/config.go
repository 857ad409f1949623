package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"boxlink/internal/singbox"
	"boxlink/internal/singbox/option"
)

const DefaultPath = "config.yaml"

type Config struct {
	Database     DatabaseConfig     `yaml:"database" toml:"database"`
	Subscription SubscriptionConfig `yaml:"subscription" toml:"subscription"`
	GeoIP        GeoIPConfig        `yaml:"geoip" toml:"geoip"`
	Document     DocumentConfig     `yaml:"document" toml:"document"`
	Publishers   []PublisherConfig  `yaml:"publishers" toml:"publishers"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type SubscriptionConfig struct {
	Collector   string        `yaml:"collector" toml:"collector"` // "http" or "allorigins"
	RelayURL    string        `yaml:"relay_url" toml:"relay_url"`
	Proxy       string        `yaml:"proxy" toml:"proxy"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout"`
	Concurrency int           `yaml:"concurrency" toml:"concurrency"`
	UserAgent   string        `yaml:"user_agent" toml:"user_agent"`
	Dedupe      bool          `yaml:"dedupe" toml:"dedupe"`
}

type GeoIPConfig struct {
	CountryPath string `yaml:"country_path" toml:"country_path"`
	ASNPath     string `yaml:"asn_path" toml:"asn_path"`
}

type DocumentConfig struct {
	LogLevel string        `yaml:"log_level" toml:"log_level"`
	URLTest  URLTestConfig `yaml:"urltest" toml:"urltest"`
	DNS      DNSConfig     `yaml:"dns" toml:"dns"`
	Inbounds InboundConfig `yaml:"inbounds" toml:"inbounds"`
	Route    RouteConfig   `yaml:"route" toml:"route"`

	CacheFile bool           `yaml:"cache_file" toml:"cache_file"`
	ClashAPI  ClashAPIConfig `yaml:"clash_api" toml:"clash_api"`
}

type URLTestConfig struct {
	Tag       string `yaml:"tag" toml:"tag"`
	URL       string `yaml:"url" toml:"url"`
	Interval  string `yaml:"interval" toml:"interval"`
	Tolerance int    `yaml:"tolerance" toml:"tolerance"`
}

type DNSConfig struct {
	Strategy string                     `yaml:"strategy" toml:"strategy"`
	Servers  []singbox.DNSServerOptions `yaml:"servers" toml:"servers"`
	Rules    []DNSRuleConfig            `yaml:"rules" toml:"rules"`
}

type DNSRuleConfig struct {
	Geosite      []string `yaml:"geosite" toml:"geosite"`
	Domain       []string `yaml:"domain" toml:"domain"`
	DomainSuffix []string `yaml:"domain_suffix" toml:"domain_suffix"`
	QueryType    []string `yaml:"query_type" toml:"query_type"`
	Server       string   `yaml:"server" toml:"server"`
	RewriteTTL   int      `yaml:"rewrite_ttl" toml:"rewrite_ttl"`
}

type InboundConfig struct {
	Tun         bool   `yaml:"tun" toml:"tun"`
	TunName     string `yaml:"tun_name" toml:"tun_name"`
	TunAddress  string `yaml:"tun_address" toml:"tun_address"`
	TunStack    string `yaml:"tun_stack" toml:"tun_stack"`
	MixedListen string `yaml:"mixed_listen" toml:"mixed_listen"`
	MixedPort   int    `yaml:"mixed_port" toml:"mixed_port"`
}

type RouteConfig struct {
	BlockDomains   []string `yaml:"block_domains" toml:"block_domains"`
	BlockKeywords  []string `yaml:"block_keywords" toml:"block_keywords"`
	DirectSuffixes []string `yaml:"direct_suffixes" toml:"direct_suffixes"`
	DirectGeosite  []string `yaml:"direct_geosite" toml:"direct_geosite"`
	DirectGeoIP    []string `yaml:"direct_geoip" toml:"direct_geoip"`
	PrivateCIDRs   []string `yaml:"private_cidrs" toml:"private_cidrs"`
}

type ClashAPIConfig struct {
	ExternalController string `yaml:"external_controller" toml:"external_controller"`
	ExternalUI         string `yaml:"external_ui" toml:"external_ui"`
	Secret             string `yaml:"secret" toml:"secret"`
	DefaultMode        string `yaml:"default_mode" toml:"default_mode"`
}

type PublisherConfig struct {
	Name   string                 `yaml:"name" toml:"name"`
	Type   string                 `yaml:"type" toml:"type"`
	Params map[string]interface{} `yaml:"params" toml:"params"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := singbox.DefaultOptions()

	var cfg Config
	cfg.Database.Path = "boxlink.db"

	cfg.Subscription.Collector = "http"
	cfg.Subscription.RelayURL = "https://api.allorigins.win/get"
	cfg.Subscription.Timeout = 30 * time.Second
	cfg.Subscription.Concurrency = 4
	cfg.Subscription.UserAgent = "boxlink/1.0"

	cfg.GeoIP.CountryPath = "GeoLite2-Country.mmdb"

	d := &cfg.Document
	d.LogLevel = opts.LogLevel
	d.URLTest = URLTestConfig{
		Tag:       opts.GroupTag,
		URL:       opts.ProbeURL,
		Interval:  opts.ProbeInterval,
		Tolerance: opts.Tolerance,
	}
	d.DNS.Strategy = opts.DNSStrategy
	d.DNS.Servers = opts.DNSServers
	for _, r := range opts.DNSRules {
		d.DNS.Rules = append(d.DNS.Rules, DNSRuleConfig(r))
	}
	d.Inbounds = InboundConfig{
		Tun:         opts.TunEnabled,
		TunName:     opts.TunInterface,
		TunAddress:  opts.TunAddress,
		TunStack:    opts.TunStack,
		MixedListen: opts.MixedListen,
		MixedPort:   opts.MixedPort,
	}
	d.Route = RouteConfig{
		BlockDomains:   opts.BlockDomains,
		BlockKeywords:  opts.BlockKeywords,
		DirectSuffixes: opts.DirectSuffixes,
		DirectGeosite:  opts.DirectGeosite,
		DirectGeoIP:    opts.DirectGeoIP,
		PrivateCIDRs:   opts.PrivateCIDRs,
	}
	d.CacheFile = opts.CacheFile
	return &cfg
}

// Load reads path over the defaults. ".toml" files are decoded as TOML,
// anything else as YAML. An empty path falls back to ./config.yaml and a
// missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config yaml: %w", err)
		}
	}

	if cfg.Subscription.Concurrency <= 0 {
		cfg.Subscription.Concurrency = 4
	}
	if cfg.Subscription.Timeout <= 0 {
		cfg.Subscription.Timeout = 30 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) FilterPublishers(names []string) {
	if len(names) == 0 {
		return
	}
	whitelist := make(map[string]bool)
	for _, n := range names {
		whitelist[n] = true
	}
	var filtered []PublisherConfig
	for _, item := range c.Publishers {
		if whitelist[item.Name] {
			filtered = append(filtered, item)
		}
	}
	c.Publishers = filtered
}

// CollectorParams builds the params map handed to subscription collectors.
func (c *Config) CollectorParams() map[string]interface{} {
	s := c.Subscription
	return map[string]interface{}{
		"relay_url":  s.RelayURL,
		"_proxy_url": s.Proxy,
		"timeout":    s.Timeout,
		"user_agent": s.UserAgent,
	}
}

// Options converts the document section into assembler options.
func (d DocumentConfig) Options() singbox.Options {
	opts := singbox.DefaultOptions()
	opts.LogLevel = d.LogLevel
	opts.GroupTag = d.URLTest.Tag
	opts.ProbeURL = d.URLTest.URL
	opts.ProbeInterval = d.URLTest.Interval
	opts.Tolerance = d.URLTest.Tolerance

	opts.DNSStrategy = d.DNS.Strategy
	opts.DNSServers = d.DNS.Servers
	opts.DNSRules = nil
	for _, r := range d.DNS.Rules {
		opts.DNSRules = append(opts.DNSRules, option.DNSRule(r))
	}

	opts.TunEnabled = d.Inbounds.Tun
	opts.TunInterface = d.Inbounds.TunName
	opts.TunAddress = d.Inbounds.TunAddress
	opts.TunStack = d.Inbounds.TunStack
	opts.MixedListen = d.Inbounds.MixedListen
	opts.MixedPort = d.Inbounds.MixedPort

	opts.BlockDomains = d.Route.BlockDomains
	opts.BlockKeywords = d.Route.BlockKeywords
	opts.DirectSuffixes = d.Route.DirectSuffixes
	opts.DirectGeosite = d.Route.DirectGeosite
	opts.DirectGeoIP = d.Route.DirectGeoIP
	opts.PrivateCIDRs = d.Route.PrivateCIDRs

	opts.CacheFile = d.CacheFile
	if d.ClashAPI.ExternalController != "" {
		opts.ClashAPI = &option.ClashAPIOptions{
			ExternalController: d.ClashAPI.ExternalController,
			ExternalUI:         d.ClashAPI.ExternalUI,
			Secret:             d.ClashAPI.Secret,
			DefaultMode:        d.ClashAPI.DefaultMode,
		}
	}
	return opts
}
