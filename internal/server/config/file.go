package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from zero values, so a partial file only overrides what it
// names. Durations go through timex.Duration ("24h" or nanoseconds).
type fileConfig struct {
	Env                   *string         `json:"env" yaml:"env"`
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey             *string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	BcryptCost            *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	RateLimitRequests     *int            `json:"rate_limit_requests" yaml:"rate_limit_requests"`
	RateLimitWindow       *timex.Duration `json:"rate_limit_window" yaml:"rate_limit_window"`
	RequestTimeout        *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	AllowedOrigins        []string        `json:"allowed_origins" yaml:"allowed_origins"`
	RedisAddr             *string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword         *string         `json:"redis_password" yaml:"redis_password"`
	RedisDB               *int            `json:"redis_db" yaml:"redis_db"`
	ListCacheTTL          *timex.Duration `json:"list_cache_ttl" yaml:"list_cache_ttl"`
}

// parseFile loads the file named by -c/-config. Files ending in .yaml or
// .yml are decoded as YAML, anything else as JSON. No flag, no changes.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &fileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return err
	}

	c.apply(config)
	return nil
}

func (c *fileConfig) apply(config *Config) {
	setString(&config.Env, c.Env)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)

	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.RateLimitRequests != nil {
		config.RateLimitRequests = *c.RateLimitRequests
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}

	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.RateLimitWindow != nil {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ListCacheTTL != nil {
		config.ListCacheTTL = c.ListCacheTTL.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
