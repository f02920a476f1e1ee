// Command sctv-playlist: scrape the 51zmt EPG site for the Sichuan Telecom
// multicast channel list and logos, and write two M3U playlists:
//
//	IPTV_OUTPUT_WITH_LAN    streams via the LAN relay at $LAN_ADDRESS/rtp/<group:port>
//	IPTV_OUTPUT_NATIVE_RTP  raw rtp://<group:port> for players on the IPTV VLAN
//
// All settings come from the environment (and ./.env); there are no flags.
// Exit status is non-zero only when a playlist cannot be written.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapetech/sctv-playlist/internal/channels"
	"github.com/snapetech/sctv-playlist/internal/config"
	"github.com/snapetech/sctv-playlist/internal/httpclient"
	"github.com/snapetech/sctv-playlist/internal/metrics"
	"github.com/snapetech/sctv-playlist/internal/pipeline"
)

func main() {
	_ = config.LoadEnvFile(".env")
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("[sctv-playlist] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, config.Load())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config) int {
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid config: %v", err)
		return 1
	}
	fetcher := httpclient.NewFetcher(cfg.FetchTimeout, cfg.RequestInterval, cfg.UserAgent)
	rec := metrics.New()
	res, err := pipeline.Run(ctx, cfg, fetcher, channels.DefaultRules(), rec)
	if err != nil {
		log.Printf("Run failed: %v", err)
		return 1
	}
	if err := pipeline.ExportMetrics(cfg, rec); err != nil {
		log.Printf("Metrics export failed: %v", err)
	}
	log.Printf("Done: %d channels, %d logos", len(res.Channels), res.Icons)
	return 0
}
