package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/flagx"
)

// parseFlags applies -a (server address) and -i (request timeout, whole
// seconds). A flag that is not given leaves the field as it was.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeoutSeconds := fs.Uint("i", 0, "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.RequestTimeout = time.Duration(*timeoutSeconds) * time.Second
		}
	})
}
