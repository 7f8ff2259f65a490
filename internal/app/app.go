package app

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"tubetext/internal/app/server"
	"tubetext/internal/auth"
	"tubetext/internal/config"
	"tubetext/internal/geolite"
	"tubetext/internal/pool"
	"tubetext/internal/pool/checker"
	"tubetext/internal/pool/providers"
	"tubetext/internal/support"
	"tubetext/internal/transcript"
)

const defaultPort = 8082

// Feeds the plaintext provider pulls when nothing else is configured. Raw
// GitHub lists are refreshed upstream several times a day. The list carries
// plain http proxies only; https coverage comes from the table providers.
var plainTextFeeds = map[string]string{
	"http": "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt",
}

const freeProxyListURL = "https://free-proxy-list.net/"

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.SetLevel(log.DebugLevel)

	portFlag := flag.Int("port", defaultPort, "Port for API server")
	mintToken := flag.Bool("mint-token", false, "Print a maintenance API token and exit")
	flag.Parse()

	if *mintToken {
		token, err := auth.GenerateJWT("maintenance")
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	config.ReadSettings()
	cfg := config.GetConfig()

	port := support.GetEnvInt("PORT", *portFlag)

	proxyPool, err := buildPool(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = support.CloseRedisClient() }()

	transcripts := transcript.New(
		transcript.WithPool(proxyPool, cfg.Transcript.RetriesWhenBlocked),
		transcript.WithTimeout(time.Duration(cfg.Transcript.Timeout)*time.Millisecond),
	)

	if interval := config.CalculateBetweenTime(cfg.Pool.RefreshTimer); interval > 0 {
		go refreshLoop(proxyPool, interval)
	}

	return server.OpenRoutes(port, proxyPool, transcripts)
}

func buildPool(cfg config.Config) (*pool.Pool, error) {
	probeTimeout := time.Duration(cfg.Checker.Timeout) * time.Millisecond
	chk := checker.New(cfg.Checker.Threads, probeTimeout, cfg.Checker.IpLookup, cfg.Checker.Judges)

	geo := geolite.Open(cfg.GeoLite.DatabasePath)
	scrapeTimeout := time.Duration(cfg.Scraper.Timeout) * time.Millisecond

	available := map[string]providers.Provider{
		"plaintext":     providers.NewPlainText("plaintext", plainTextFeeds, scrapeTimeout, chk, geo),
		"geonode":       providers.NewGeoNode(scrapeTimeout, chk),
		"freeproxylist": providers.NewFreeProxyList(freeProxyListURL, int(cfg.Scraper.Threads), scrapeTimeout),
		"browser":       providers.NewBrowser(freeProxyListURL, cfg.Scraper.BrowserPool, scrapeTimeout),
	}

	var selected []providers.Provider
	for _, name := range cfg.Pool.Providers {
		provider, ok := available[name]
		if !ok {
			log.Warn("unknown provider in settings, skipping", "provider", name)
			continue
		}
		selected = append(selected, provider)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	return pool.New(pool.Options{
		Protocol:    cfg.Pool.Protocol,
		Countries:   cfg.Pool.Countries,
		MaxProxies:  cfg.Pool.MaxProxies,
		CacheTTL:    config.CalculateBetweenTime(cfg.Pool.CacheTTL),
		AutoRefresh: cfg.Pool.AutoRefresh,
		AutoRotate:  cfg.Pool.AutoRotate,
		Store:       store,
		Providers:   selected,
	})
}

// buildStore picks the cache backend: redis when REDIS_URL is set so that
// several instances can share one pool, the cache file otherwise.
func buildStore(cfg config.Config) (pool.Store, error) {
	if support.GetEnv("REDIS_URL", "") != "" {
		client, err := support.GetRedisClient()
		if err != nil {
			return nil, err
		}
		return &pool.RedisStore{Client: client, Key: "tubetext:proxy_cache"}, nil
	}

	return &pool.FileStore{Path: cfg.Pool.CachePath}, nil
}

func refreshLoop(proxyPool *pool.Pool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := proxyPool.Refresh(context.Background()); err != nil {
			log.Error("scheduled pool refresh failed", "error", err)
		}
	}
}
