// Package playlist renders channel lists as extended M3U playlists.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snapetech/sctv-playlist/internal/channels"
)

// AddressMode selects how a channel's multicast address becomes a stream URL.
type AddressMode int

const (
	// LANRelative points players at a udpxy-style relay: <LANAddress>/rtp/<address>.
	LANRelative AddressMode = iota
	// RawMulticast emits rtp://<address> for players on the IPTV VLAN.
	RawMulticast
)

func (m AddressMode) String() string {
	switch m {
	case LANRelative:
		return "lan"
	case RawMulticast:
		return "rtp"
	}
	return fmt.Sprintf("AddressMode(%d)", int(m))
}

const DefaultTitle = "成都电信IPTV"

// DefaultTVGURLs are the XMLTV guides advertised in the header.
var DefaultTVGURLs = []string{"http://epg.51zmt.top:8000/e.xml", "https://epg.112114.xyz/pp.xml"}

// Options controls the header and the LAN stream prefix. Zero Title,
// TVGURLs and Now take the package defaults; an empty LANAddress gives
// root-relative /rtp/<address> lines.
type Options struct {
	Title      string
	TVGURLs    []string
	LANAddress string
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if len(o.TVGURLs) == 0 {
		o.TVGURLs = DefaultTVGURLs
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// StreamURL returns the stream line for address under mode.
func (o Options) StreamURL(address string, mode AddressMode) string {
	if mode == RawMulticast {
		return "rtp://" + address
	}
	return o.LANAddress + "/rtp/" + address
}

// Render writes the playlist: a header line and a blank line, then an
// #EXTINF line and a stream line per channel, in order.
func Render(w io.Writer, chans []channels.Channel, opts Options, mode AddressMode) error {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)
	ts := opts.Now().Format(time.RFC3339)
	fmt.Fprintf(bw, "#EXTM3U name=\"%s - %s\" url-tvg=\"%s\"\n\n", opts.Title, ts, strings.Join(opts.TVGURLs, ","))
	for _, c := range chans {
		fmt.Fprintf(bw, "#EXTINF:-1 tvg-logo=\"%s\" tvg-id=\"%s\" tvg-name=\"%s\" group-title=\"%s\",%s\n",
			c.Icon, c.ID, c.Name, c.Tag, c.Name)
		bw.WriteString(opts.StreamURL(c.Address, mode))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Write renders chans to path, creating parent directories as needed and
// truncating any existing file. The write is not atomic.
func Write(path string, chans []channels.Channel, opts Options, mode AddressMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write playlist %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write playlist %s: %w", path, err)
	}
	if err := Render(f, chans, opts, mode); err != nil {
		f.Close()
		return fmt.Errorf("write playlist %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write playlist %s: %w", path, err)
	}
	return nil
}
