// Package pipeline runs one refresh: fetch both EPG pages, build the channel
// list and write the LAN and native playlists.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/snapetech/sctv-playlist/internal/channels"
	"github.com/snapetech/sctv-playlist/internal/config"
	"github.com/snapetech/sctv-playlist/internal/htmltable"
	"github.com/snapetech/sctv-playlist/internal/httpclient"
	"github.com/snapetech/sctv-playlist/internal/icons"
	"github.com/snapetech/sctv-playlist/internal/metrics"
	"github.com/snapetech/sctv-playlist/internal/playlist"
)

// Fetcher returns a page, or ok=false after logging why it could not.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (page *httpclient.Page, ok bool)
}

// Result summarizes a run.
type Result struct {
	Channels []channels.Channel
	Stats    channels.Stats
	Icons    int
}

// Run executes the refresh. Fetch failures leave that input empty and the
// run continues, so an unreachable EPG site still yields two header-only
// playlists. Only playlist write errors are returned. rec may be nil.
func Run(ctx context.Context, cfg *config.Config, f Fetcher, rules channels.Rules, rec *metrics.Run) (Result, error) {
	if rec == nil {
		rec = metrics.New()
	}
	var res Result

	log.Printf("Extracting channels from %s", cfg.ChannelPageURL())
	chRows := fetchRows(ctx, f, cfg.ChannelPageURL(), metrics.PageChannels, rec)
	log.Printf("Channel table rows: %d", len(chRows))

	iconRows := fetchRows(ctx, f, cfg.BaseURL, metrics.PageIcons, rec)
	recs, skipped := icons.Records(iconRows)
	ix := icons.NewIndex(recs, cfg.BaseURL)
	res.Icons = len(ix)
	log.Printf("Icons: %d indexed (%d rows skipped)", len(ix), skipped)

	res.Channels, res.Stats = channels.Normalize(chRows, ix, rules)
	log.Printf("Processed channels: %d (%s)", len(res.Channels), res.Stats)

	rec.IconsIndexed.Set(float64(res.Icons))
	rec.ChannelsRaw.Set(float64(res.Stats.Raw))
	rec.ChannelsFiltered.Set(float64(res.Stats.Filtered))
	rec.ChannelsProcessed.Set(float64(res.Stats.Processed))

	opts := playlist.Options{
		Title:      cfg.PlaylistTitle,
		TVGURLs:    cfg.TVGURLs,
		LANAddress: cfg.LANAddress,
	}
	outputs := []struct {
		path string
		mode playlist.AddressMode
	}{
		{cfg.OutputWithLAN, playlist.LANRelative},
		{cfg.OutputNativeRTP, playlist.RawMulticast},
	}
	for _, o := range outputs {
		if err := playlist.Write(o.path, res.Channels, opts, o.mode); err != nil {
			return res, err
		}
		rec.PlaylistEntries.WithLabelValues(o.mode.String()).Set(float64(len(res.Channels)))
		log.Printf("Wrote playlist: %s (%d channels, %s)", o.path, len(res.Channels), o.mode)
	}
	rec.MarkDone(time.Now())
	return res, nil
}

func fetchRows(ctx context.Context, f Fetcher, url, page string, rec *metrics.Run) []htmltable.Row {
	p, ok := f.Fetch(ctx, url)
	if !ok {
		rec.FetchFailures.WithLabelValues(page).Inc()
		return nil
	}
	rows := htmltable.ParsePage(p.Body, p.ContentType)
	rec.RowsParsed.WithLabelValues(page).Add(float64(len(rows)))
	return rows
}

// ExportMetrics writes rec to cfg.MetricsTextfile when one is configured.
func ExportMetrics(cfg *config.Config, rec *metrics.Run) error {
	if cfg.MetricsTextfile == "" || rec == nil {
		return nil
	}
	if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
		return fmt.Errorf("metrics textfile %s: %w", cfg.MetricsTextfile, err)
	}
	return nil
}
