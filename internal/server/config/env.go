package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/signmanager/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr       = "SIGNMANAGER_GRPC_ADDR"
	EnvHTTPAddr       = "SIGNMANAGER_HTTP_ADDR"
	EnvDatabaseDSN    = "SIGNMANAGER_DATABASE_DSN"
	EnvSecretKey      = "SIGNMANAGER_SECRET_KEY"
	EnvAccessTokenTTL = "SIGNMANAGER_ACCESS_TOKEN_TTL"
	EnvBcryptCost     = "SIGNMANAGER_BCRYPT_COST"
	EnvLogLevel       = "SIGNMANAGER_LOG_LEVEL"
)

const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (-e/-env, otherwise ./.env when present) and
// then overlays SIGNMANAGER_* variables. Variables already set in the
// process environment win over the file.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlags()
	if envFile == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			envFile = defaultEnvFile
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	lookupString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	lookupString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	lookupString(&config.DatabaseDSN, EnvDatabaseDSN)
	lookupString(&config.SecretKey, EnvSecretKey)
	lookupString(&config.LogLevel, EnvLogLevel)

	if v, ok := os.LookupEnv(EnvAccessTokenTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := os.LookupEnv(EnvBcryptCost); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
