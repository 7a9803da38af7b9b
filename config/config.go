// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package config handles YAML configuration file parsing and
// validation for the authoritative server's single zone, ACL,
// transports, and metrics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Zone    ZoneConfig    `yaml:"zone"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	BindUDP        string `yaml:"bind_udp"`
	BindTCP        string `yaml:"bind_tcp"`
	AutoReload     bool   `yaml:"auto_reload"`     // watch the config file for changes
	ReloadDebounce int    `yaml:"reload_debounce"` // debounce time in seconds (default 2)
}

// ZoneConfig names the single zone file and ACL this server answers
// from. There is no zone type selector and no nested NS/SOA block —
// those live in the zone file itself (zone package's loader).
type ZoneConfig struct {
	File    string     `yaml:"file"`
	ACL     string     `yaml:"acl"`       // path to ACL file
	ACLRule ACLRuleSet `yaml:"acl_rules"` // inline ACL rules
}

// ACLRuleSet defines allow/deny rules inline in config.
type ACLRuleSet struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

type MetricsConfig struct {
	PrometheusEndpoint string `yaml:"prometheus_endpoint"`
	OTELEndpoint       string `yaml:"otel_endpoint"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			BindUDP:        "0.0.0.0:53",
			BindTCP:        "0.0.0.0:53",
			AutoReload:     true,
			ReloadDebounce: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Zone.File == "" {
		return nil, fmt.Errorf("config: zone.file is required")
	}

	return cfg, nil
}

// Example returns a YAML example config.
func Example() string {
	return `# dnscore server configuration

server:
  bind_udp: "0.0.0.0:53"
  bind_tcp: "0.0.0.0:53"
  auto_reload: true        # watch this config file for changes
  reload_debounce: 2       # wait 2 seconds before reloading (prevents rapid reloads)

zone:
  file: /etc/dnscore/example.com.zone
  # Option 1: ACL from file
  acl: /etc/dnscore/acl.txt
  # Option 2: inline ACL rules
  # acl_rules:
  #   allow:
  #     - 192.168.0.0/16
  #     - 10.0.0.0/8
  #   deny:
  #     - 203.0.113.0/24

metrics:
  prometheus_endpoint: "localhost:9090"
  otel_endpoint: "localhost:4318"

logging:
  level: "info"
`
}
