// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager watches the config file for changes and reloads it,
// notifying the caller of what actually changed so it can decide
// whether the zone needs reloading, the ACL needs rebuilding, or the
// listeners need rebinding.
type Manager struct {
	configPath string
	cfg        *Config
	mu         sync.RWMutex
	watcher    *fsnotify.Watcher
	done       chan bool
	onReload   func(*Config, Changes) error
}

// Changes describes what changed between the old and new config.
type Changes struct {
	ZoneFileChanged bool
	ACLChanged      bool
	ServerChanged   bool
}

// Any reports whether anything changed at all.
func (c Changes) Any() bool {
	return c.ZoneFileChanged || c.ACLChanged || c.ServerChanged
}

// NewManager creates a config manager, performing the initial load.
func NewManager(configPath string, onReload func(*Config, Changes) error) (*Manager, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		configPath: configPath,
		cfg:        cfg,
		done:       make(chan bool),
		onReload:   onReload,
	}, nil
}

// Start begins watching the config file for changes.
func (m *Manager) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	m.watcher = watcher

	if err := watcher.Add(m.configPath); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	slog.Info("watching config file", "path", m.configPath)

	go m.watchLoop()
	return nil
}

// Stop stops watching the config file.
func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.done <- true
}

// Get returns the current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) watchLoop() {
	var timer *time.Timer

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Info("config file changed", "path", event.Name)

				if timer != nil {
					timer.Stop()
				}

				timer = time.AfterFunc(time.Duration(m.cfg.Server.ReloadDebounce)*time.Second, func() {
					m.reloadConfig()
				})
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)

		case <-m.done:
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	newCfg, err := LoadConfig(m.configPath)
	if err != nil {
		slog.Error("failed to reload config", "error", err)
		return
	}

	m.mu.Lock()
	oldCfg := m.cfg
	m.cfg = newCfg
	m.mu.Unlock()

	changes := detectChanges(oldCfg, newCfg)

	if m.onReload != nil {
		start := time.Now()
		if err := m.onReload(newCfg, changes); err != nil {
			slog.Error("failed to apply config changes", "error", err)
			m.mu.Lock()
			m.cfg = oldCfg
			m.mu.Unlock()
			return
		}
		slog.Info("config reloaded", "duration", time.Since(start))
	}
}

// detectChanges compares old and new configs, collapsed to the
// single zone this server answers from.
func detectChanges(oldCfg, newCfg *Config) Changes {
	return Changes{
		ZoneFileChanged: oldCfg.Zone.File != newCfg.Zone.File,
		ACLChanged:      aclConfigChanged(oldCfg.Zone, newCfg.Zone),
		ServerChanged: oldCfg.Server.BindUDP != newCfg.Server.BindUDP ||
			oldCfg.Server.BindTCP != newCfg.Server.BindTCP,
	}
}

func aclConfigChanged(old, new ZoneConfig) bool {
	if old.ACL != new.ACL {
		return true
	}
	if len(old.ACLRule.Allow) != len(new.ACLRule.Allow) || len(old.ACLRule.Deny) != len(new.ACLRule.Deny) {
		return true
	}
	for i, v := range old.ACLRule.Allow {
		if new.ACLRule.Allow[i] != v {
			return true
		}
	}
	for i, v := range old.ACLRule.Deny {
		if new.ACLRule.Deny[i] != v {
			return true
		}
	}
	return false
}
