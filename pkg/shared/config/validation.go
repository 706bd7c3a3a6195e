package config

import (
	"fmt"
	"net/url"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HttpClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateAIConfig(&cfg.AI); err != nil {
		return fmt.Errorf("YAML global config: ai directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP client configurations have valid values.
func ValidateHTTPConfig(cfg *HttpClient) error {
	if cfg.RetryCount < 0 {
		return fmt.Errorf("retry_count must not be negative")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if cfg.Proxy.Host != "" && cfg.Proxy.Port == "" {
		return fmt.Errorf("proxy host is set but proxy port is empty")
	}
	return nil
}

// ValidateAIConfig checks if the AI configurations have valid values.
func ValidateAIConfig(cfg *AI) error {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return fmt.Errorf("base_url %q is not a valid URL: %w", cfg.BaseURL, err)
		}
	}
	if cfg.MaxContentBytes < 0 {
		return fmt.Errorf("max_content_bytes must not be negative")
	}
	if cfg.Enabled && cfg.BaseURL == "" && DefaultAIConfig().BaseURL == "" {
		return fmt.Errorf("ai analysis is enabled but base_url is empty")
	}
	return nil
}

// ValidateScanConfig checks if the scan defaults have valid values.
func ValidateScanConfig(cfg *Scan) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if cfg.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must not be negative")
	}
	return nil
}
