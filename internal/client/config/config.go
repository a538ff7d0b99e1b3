package config

import "time"

// Config holds runtime settings for the imagevault CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SessionDBPath: sqlite file holding the persisted session.
//   - GalleryConcurrency: how many images a gallery decrypts at once.
//   - DownloadDir: where decrypted images are written.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	SessionDBPath       string
	GalleryConcurrency  int
	DownloadDir         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.SessionDBPath = "imagevault.db"
	c.GalleryConcurrency = 4
	c.DownloadDir = "downloads"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
