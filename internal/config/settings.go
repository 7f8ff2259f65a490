package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

type Config struct {
	Pool struct {
		Protocol    string   `json:"protocol"`
		Countries   []string `json:"countries"`
		MaxProxies  int      `json:"max_proxies"`
		CacheTTL    Timer    `json:"cache_ttl"`
		CachePath   string   `json:"cache_path"`
		AutoRotate  bool     `json:"auto_rotate"`
		AutoRefresh bool     `json:"auto_refresh"`

		RefreshTimer Timer `json:"refresh_timer"` // Background re-refresh, zero disables

		Providers []string `json:"providers"`
	} `json:"pool"`

	Checker struct {
		Threads  int64    `json:"threads"`
		Timeout  uint32   `json:"timeout"` // Milliseconds per probe
		IpLookup string   `json:"ip_lookup"`
		Judges   []string `json:"judges"`
	} `json:"checker"`

	Scraper struct {
		Threads     int64  `json:"threads"`
		Timeout     uint32 `json:"timeout"` // Milliseconds per page fetch
		BrowserPool int    `json:"browser_pool"`
	} `json:"scraper"`

	Transcript struct {
		RetriesWhenBlocked int      `json:"retries_when_blocked"`
		Timeout            uint32   `json:"timeout"` // Milliseconds per request
		Languages          []string `json:"languages"`
	} `json:"transcript"`

	Server struct {
		ExportPath string `json:"export_path"` // List file written after /warm, empty disables
	} `json:"server"`

	GeoLite struct {
		DatabasePath string `json:"database_path"`
	} `json:"geolite"`
}

type Timer struct {
	Days    uint32 `json:"days"`
	Hours   uint32 `json:"hours"`
	Minutes uint32 `json:"minutes"`
	Seconds uint32 `json:"seconds"`
}

const settingsFilePath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
	configMu    sync.Mutex
)

func init() {
	var cfg Config
	if err := json.Unmarshal(defaultConfig, &cfg); err == nil {
		configValue.Store(cfg)
	} else {
		configValue.Store(Config{})
	}
}

func ReadSettings() {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err := os.MkdirAll("data", os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", err)
				return
			}

			if err := os.WriteFile(settingsFilePath, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", err)
				return
			}

			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", err)
			return
		}
	}

	var newConfig Config
	if err := json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", err)
		return
	}

	configMu.Lock()
	configValue.Store(newConfig)
	configMu.Unlock()

	log.Debug("Settings file loaded successfully")
}

func SetConfig(newConfig Config) {
	configMu.Lock()
	defer configMu.Unlock()

	configValue.Store(newConfig)

	data, err := json.MarshalIndent(newConfig, "", "  ")
	if err != nil {
		log.Error("Error marshalling new configuration:", err)
		return
	}
	if err := os.WriteFile(settingsFilePath, data, os.ModePerm); err != nil {
		log.Error("Error writing new configuration to file:", err)
		return
	}

	log.Debug("Configuration updated and written to file successfully")
}

func GetConfig() Config {
	// Get the current Config atomically
	return configValue.Load().(Config)
}
