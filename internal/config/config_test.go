package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.BaseURL != "http://epg.51zmt.top:8000" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
	if c.ChannelPageURL() != "http://epg.51zmt.top:8000/sctvmulticast.html" {
		t.Errorf("ChannelPageURL() = %q", c.ChannelPageURL())
	}
	if c.LANAddress != "http://localhost" {
		t.Errorf("LANAddress = %q, want http://localhost", c.LANAddress)
	}
	if c.OutputWithLAN != "./m3u8/chengdu_with_lan.m3u8" || c.OutputNativeRTP != "./m3u8/chengdu_native_rtp.m3u8" {
		t.Errorf("outputs = %q, %q", c.OutputWithLAN, c.OutputNativeRTP)
	}
	if c.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", c.FetchTimeout)
	}
	if c.RequestInterval != 0 {
		t.Errorf("RequestInterval = %v, want 0", c.RequestInterval)
	}
	if len(c.TVGURLs) != 2 || c.TVGURLs[0] != "http://epg.51zmt.top:8000/e.xml" || c.TVGURLs[1] != "https://epg.112114.xyz/pp.xml" {
		t.Errorf("TVGURLs = %v", c.TVGURLs)
	}
	if c.MetricsTextfile != "" {
		t.Errorf("MetricsTextfile should default empty; got %q", c.MetricsTextfile)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("LAN_ADDRESS", "http://192.168.1.1:4022")
	os.Setenv("IPTV_EPG_BASE_URL", "http://mirror.local/")
	os.Setenv("IPTV_CHANNEL_PAGE", "/other.html")
	os.Setenv("IPTV_TVG_URLS", " http://a/e.xml ,, http://b/e.xml")
	c := Load()
	if c.LANAddress != "http://192.168.1.1:4022" {
		t.Errorf("LANAddress = %q", c.LANAddress)
	}
	if c.ChannelPageURL() != "http://mirror.local/other.html" {
		t.Errorf("ChannelPageURL() = %q", c.ChannelPageURL())
	}
	if len(c.TVGURLs) != 2 || c.TVGURLs[1] != "http://b/e.xml" {
		t.Errorf("TVGURLs = %v", c.TVGURLs)
	}
}

func TestLoad_emptyLANAddress(t *testing.T) {
	os.Clearenv()
	os.Setenv("LAN_ADDRESS", "")
	if c := Load(); c.LANAddress != "" {
		t.Errorf("LANAddress = %q, want empty when set to empty", c.LANAddress)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"unset", "", 10 * time.Second},
		{"duration", "2500ms", 2500 * time.Millisecond},
		{"bare seconds", "15", 15 * time.Second},
		{"garbage", "soon", 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.val != "" {
				os.Setenv("IPTV_FETCH_TIMEOUT", tt.val)
			}
			if got := Load().FetchTimeout; got != tt.want {
				t.Errorf("FetchTimeout(%q) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}

func TestLoad_nonPositiveTimeout(t *testing.T) {
	os.Clearenv()
	os.Setenv("IPTV_FETCH_TIMEOUT", "0s")
	if got := Load().FetchTimeout; got != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want default", got)
	}
}

func TestValidate(t *testing.T) {
	os.Clearenv()
	c := Load()
	c.BaseURL = "ftp://epg.example"
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-http base URL")
	}
	c = Load()
	c.OutputNativeRTP = c.OutputWithLAN
	if err := c.Validate(); err == nil {
		t.Error("expected error for identical outputs")
	}
	c = Load()
	c.OutputWithLAN = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error for empty output")
	}
}
