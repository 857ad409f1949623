package option

// Config is the complete routing document handed to the proxy runtime.
type Config struct {
	Log          *LogOptions          `json:"log"`
	DNS          *DNSOptions          `json:"dns"`
	Inbounds     []Inbound            `json:"inbounds"`
	Outbounds    []Outbound           `json:"outbounds"`
	Route        *RouteOptions        `json:"route"`
	Experimental *ExperimentalOptions `json:"experimental"`
}

// Outbound returns the outbound registered under tag.
func (c *Config) Outbound(tag string) (Outbound, bool) {
	for _, o := range c.Outbounds {
		if o.Tag() == tag {
			return o, true
		}
	}
	return nil, false
}

type LogOptions struct {
	Disabled  bool   `json:"disabled,omitempty"`
	Level     string `json:"level,omitempty"`
	Output    string `json:"output,omitempty"`
	Timestamp bool   `json:"timestamp"`
}

type DNSOptions struct {
	Servers      []DNSServer `json:"servers"`
	Rules        []DNSRule   `json:"rules"`
	Strategy     string      `json:"strategy,omitempty"`
	DisableCache bool        `json:"disable_cache"`
}

type DNSServer struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
	Detour  string `json:"detour,omitempty"`
}

// DNSRule matches queries and picks a server. A rule with no match fields is
// a catch-all and must come last.
type DNSRule struct {
	Geosite      []string `json:"geosite,omitempty"`
	Domain       []string `json:"domain,omitempty"`
	DomainSuffix []string `json:"domain_suffix,omitempty"`
	QueryType    []string `json:"query_type,omitempty"`
	Server       string   `json:"server"`
	RewriteTTL   int      `json:"rewrite_ttl,omitempty"`
}

type RouteOptions struct {
	Rules               []RouteRule `json:"rules"`
	Final               string      `json:"final"`
	AutoDetectInterface bool        `json:"auto_detect_interface"`
	OverrideAndroidVPN  bool        `json:"override_android_vpn"`
}

type RouteRule struct {
	Protocol      []string `json:"protocol,omitempty"`
	Domain        []string `json:"domain,omitempty"`
	DomainKeyword []string `json:"domain_keyword,omitempty"`
	DomainSuffix  []string `json:"domain_suffix,omitempty"`
	Geosite       []string `json:"geosite,omitempty"`
	GeoIP         []string `json:"geoip,omitempty"`
	IPCIDR        []string `json:"ip_cidr,omitempty"`
	Outbound      string   `json:"outbound"`
}

type ExperimentalOptions struct {
	CacheFile *CacheFileOptions `json:"cache_file,omitempty"`
	ClashAPI  *ClashAPIOptions  `json:"clash_api,omitempty"`
}

type CacheFileOptions struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type ClashAPIOptions struct {
	ExternalController string `json:"external_controller"`
	ExternalUI         string `json:"external_ui,omitempty"`
	Secret             string `json:"secret,omitempty"`
	DefaultMode        string `json:"default_mode,omitempty"`
}
