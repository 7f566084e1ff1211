// Package config holds the CLI settings. LoadConfig layers them as
// defaults, then the JSON file named by -c / -config, then flags.
package config

import "time"

type Config struct {
	// gRPC endpoint, host:port
	ServerEndpointAddr string
	// per-call deadline; zero disables it
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
