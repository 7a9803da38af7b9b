package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, `server:
  bind_udp: "127.0.0.1:5300"
  bind_tcp: "127.0.0.1:5300"

zone:
  file: /data/example.com.zone

metrics:
  prometheus_endpoint: "0.0.0.0:9090"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.BindUDP != "127.0.0.1:5300" {
		t.Errorf("expected bind_udp 127.0.0.1:5300, got %s", cfg.Server.BindUDP)
	}
	if cfg.Zone.File != "/data/example.com.zone" {
		t.Errorf("expected zone file /data/example.com.zone, got %s", cfg.Zone.File)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server:\n  bind_udp: \"unclosed string\nzone: [this is bad\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("should have rejected invalid YAML")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("should have failed to load missing config")
	}
}

func TestLoadConfigRequiresZoneFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  bind_udp: \"0.0.0.0:53\"\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("should have rejected config with no zone.file")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	path := writeConfigFile(t, "zone:\n  file: /data/example.com.zone\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Server.AutoReload {
		t.Error("expected auto_reload default to be true")
	}
	if cfg.Server.ReloadDebounce != 2 {
		t.Errorf("expected default debounce 2, got %d", cfg.Server.ReloadDebounce)
	}
	if cfg.Server.BindUDP != "0.0.0.0:53" {
		t.Errorf("expected default bind_udp 0.0.0.0:53, got %s", cfg.Server.BindUDP)
	}
}

func TestLoadConfigWithACLRules(t *testing.T) {
	path := writeConfigFile(t, `zone:
  file: /data/example.com.zone
  acl_rules:
    allow:
      - 192.168.0.0/16
      - 10.0.0.0/8
    deny:
      - 203.0.113.0/24
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Zone.ACLRule.Allow) != 2 {
		t.Errorf("expected 2 allow rules, got %d", len(cfg.Zone.ACLRule.Allow))
	}
	if len(cfg.Zone.ACLRule.Deny) != 1 {
		t.Errorf("expected 1 deny rule, got %d", len(cfg.Zone.ACLRule.Deny))
	}
}

func TestLoadConfigWithACLFile(t *testing.T) {
	path := writeConfigFile(t, `zone:
  file: /data/example.com.zone
  acl: /etc/dnscore/acl.txt
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Zone.ACL != "/etc/dnscore/acl.txt" {
		t.Errorf("expected ACL path /etc/dnscore/acl.txt, got %s", cfg.Zone.ACL)
	}
}

func TestLoadConfigWithMetrics(t *testing.T) {
	path := writeConfigFile(t, `zone:
  file: /data/example.com.zone

metrics:
  prometheus_endpoint: "0.0.0.0:9090"
  otel_endpoint: "http://localhost:4318"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Metrics.PrometheusEndpoint != "0.0.0.0:9090" {
		t.Errorf("expected prometheus endpoint 0.0.0.0:9090, got %s", cfg.Metrics.PrometheusEndpoint)
	}
	if cfg.Metrics.OTELEndpoint != "http://localhost:4318" {
		t.Errorf("expected otel endpoint http://localhost:4318, got %s", cfg.Metrics.OTELEndpoint)
	}
}

func TestLoadConfigAutoReloadSettings(t *testing.T) {
	path := writeConfigFile(t, `zone:
  file: /data/example.com.zone

server:
  auto_reload: true
  reload_debounce: 5
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Server.AutoReload {
		t.Error("expected auto_reload to be true")
	}
	if cfg.Server.ReloadDebounce != 5 {
		t.Errorf("expected reload_debounce 5, got %d", cfg.Server.ReloadDebounce)
	}
}

func TestManagerInitialization(t *testing.T) {
	path := writeConfigFile(t, "zone:\n  file: /data/example.com.zone\n")

	m, err := NewManager(path, nil)
	if err != nil {
		t.Fatalf("failed to create config manager: %v", err)
	}

	if m.Get() == nil {
		t.Fatal("config manager should load initial config")
	}
	if m.Get().Zone.File != "/data/example.com.zone" {
		t.Errorf("expected zone file /data/example.com.zone, got %s", m.Get().Zone.File)
	}
}

func TestDetectChangesZoneFile(t *testing.T) {
	old := &Config{Zone: ZoneConfig{File: "/data/a.zone"}}
	n := &Config{Zone: ZoneConfig{File: "/data/b.zone"}}

	changes := detectChanges(old, n)
	if !changes.ZoneFileChanged {
		t.Fatal("expected ZoneFileChanged to be true")
	}
	if changes.ACLChanged || changes.ServerChanged {
		t.Fatalf("unexpected changes %+v", changes)
	}
}

func TestDetectChangesACL(t *testing.T) {
	old := &Config{Zone: ZoneConfig{File: "/data/a.zone", ACL: "/etc/a.acl"}}
	n := &Config{Zone: ZoneConfig{File: "/data/a.zone", ACL: "/etc/b.acl"}}

	changes := detectChanges(old, n)
	if !changes.ACLChanged {
		t.Fatal("expected ACLChanged to be true")
	}
	if changes.ZoneFileChanged {
		t.Fatal("zone file did not change")
	}
}

func TestDetectChangesNoneWhenIdentical(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{BindUDP: "0.0.0.0:53", BindTCP: "0.0.0.0:53"},
		Zone:   ZoneConfig{File: "/data/a.zone", ACL: "/etc/a.acl"},
	}
	changes := detectChanges(cfg, cfg)
	if changes.Any() {
		t.Fatalf("expected no changes, got %+v", changes)
	}
}
