package config

import (
	"crypto/tls"
	"time"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHttpClientConfig holds additional configuration settings for the resty http client.
type RestyHttpClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// General base configuration applicable to all HTTP clients.
func DefaultHttpConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 8 * time.Second,
		Timeout:          60 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12, // Enforce a minimum TLS version
		},
		Proxy: "",
	}
}

// DefaultRestyConfig function returns a specific http config to Resty
func DefaultRestyConfig() RestyHttpClientConfig {
	baseConfig := DefaultHttpConfig()
	return RestyHttpClientConfig{
		BaseHTTPConfig: baseConfig,
		Debug:          false,
	}
}

// DefaultAIConfig returns the AI analysis settings used when the ai directive
// is absent. The endpoint shape follows the Ollama local API.
func DefaultAIConfig() AI {
	return AI{
		Enabled:         false,
		BaseURL:         "http://localhost:11434",
		Models:          []string{"deepseek-coder:6.7b", "deepseek-r1:1.5b"},
		Timeout:         60 * time.Second,
		CacheTTL:        1 * time.Hour,
		MaxContentBytes: 2000,
	}
}

// DefaultStoreConfig returns the report store settings used when the store
// directive is absent.
func DefaultStoreConfig() Store {
	return Store{
		Path: "scanward.db",
	}
}

// DefaultScanConfig returns the scan defaults used when the scan directive is
// absent. Workers 0 means "number of CPUs", resolved by the engine.
func DefaultScanConfig() Scan {
	return Scan{
		Workers:      0,
		ExcludeGlobs: nil,
		MaxFileBytes: 1 << 20,
	}
}
