package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snapetech/sctv-playlist/internal/safeurl"
)

const (
	DefaultBaseURL        = "http://epg.51zmt.top:8000"
	DefaultChannelPage    = "sctvmulticast.html"
	DefaultLANAddress     = "http://localhost"
	DefaultOutputWithLAN  = "./m3u8/chengdu_with_lan.m3u8"
	DefaultOutputNative   = "./m3u8/chengdu_native_rtp.m3u8"
	DefaultFetchTimeout   = 10 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultPlaylistTitle  = "成都电信IPTV"
	defaultTVGURLsEnvList = "http://epg.51zmt.top:8000/e.xml,https://epg.112114.xyz/pp.xml"
)

// Config holds EPG source, output and playlist settings for one run.
// Load from env; call LoadEnvFile(".env") first to use a .env file.
type Config struct {
	// EPG source
	BaseURL     string // icon table lives at BaseURL itself
	ChannelPage string // channel table path relative to BaseURL

	// Fetch
	FetchTimeout    time.Duration
	RequestInterval time.Duration // min spacing between requests to one host; 0 = unpaced
	UserAgent       string

	// Outputs
	OutputWithLAN   string
	OutputNativeRTP string
	MetricsTextfile string // node-exporter textfile path; "" = disabled

	// Playlist header and stream lines
	LANAddress    string // LAN relay base for <LANAddress>/rtp/<address>; may be ""
	PlaylistTitle string
	TVGURLs       []string
}

// Load reads config from environment. Invalid numeric/duration values fall back to defaults.
func Load() *Config {
	c := &Config{
		BaseURL:         strings.TrimSuffix(getEnv("IPTV_EPG_BASE_URL", DefaultBaseURL), "/"),
		ChannelPage:     strings.TrimPrefix(getEnv("IPTV_CHANNEL_PAGE", DefaultChannelPage), "/"),
		FetchTimeout:    getEnvDuration("IPTV_FETCH_TIMEOUT", DefaultFetchTimeout),
		RequestInterval: getEnvDuration("IPTV_REQUEST_INTERVAL", 0),
		UserAgent:       getEnv("IPTV_USER_AGENT", DefaultUserAgent),
		OutputWithLAN:   getEnv("IPTV_OUTPUT_WITH_LAN", DefaultOutputWithLAN),
		OutputNativeRTP: getEnv("IPTV_OUTPUT_NATIVE_RTP", DefaultOutputNative),
		MetricsTextfile: os.Getenv("IPTV_METRICS_TEXTFILE"),
		LANAddress:      getEnvUnset("LAN_ADDRESS", DefaultLANAddress),
		PlaylistTitle:   getEnv("IPTV_PLAYLIST_TITLE", DefaultPlaylistTitle),
		TVGURLs:         getEnvList("IPTV_TVG_URLS", defaultTVGURLsEnvList),
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.RequestInterval < 0 {
		c.RequestInterval = 0
	}
	return c
}

// ChannelPageURL returns the absolute URL of the multicast channel table.
func (c *Config) ChannelPageURL() string {
	return c.BaseURL + "/" + c.ChannelPage
}

// Validate reports settings that would make a run meaningless.
func (c *Config) Validate() error {
	if !safeurl.IsHTTPOrHTTPS(c.BaseURL) {
		return fmt.Errorf("config: IPTV_EPG_BASE_URL must be http(s): %q", c.BaseURL)
	}
	if c.OutputWithLAN == "" || c.OutputNativeRTP == "" {
		return fmt.Errorf("config: output paths must not be empty")
	}
	if c.OutputWithLAN == c.OutputNativeRTP {
		return fmt.Errorf("config: LAN and native outputs both point at %q", c.OutputWithLAN)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvUnset is getEnv where set-but-empty is a value: LAN_ADDRESS=""
// yields root-relative /rtp/<address> stream lines.
func getEnvUnset(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare integers are seconds, same as the upstream requests timeout
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

// getEnvList splits a comma-separated env value, dropping blanks.
func getEnvList(key, defaultVal string) []string {
	parts := strings.Split(getEnv(key, defaultVal), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
