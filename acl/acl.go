// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package acl implements the server's client-IP allow/deny policy.
// The toolkit serves a single zone, so there is exactly one ACL for
// the whole server rather than one per zone.
package acl

import (
	"bufio"
	"log/slog"
	"net"
	"os"
	"strings"
)

// ACL is an access control list of allow and deny CIDR ranges.
type ACL struct {
	Allow []net.IPNet
	Deny  []net.IPNet
}

// LoadFile loads an ACL from a file. An empty filename yields a
// permissive ACL with no rules.
func LoadFile(filename string) (*ACL, error) {
	a := &ACL{
		Allow: make([]net.IPNet, 0),
		Deny:  make([]net.IPNet, 0),
	}

	if filename == "" {
		return a, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	mode := "allow" // default

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "allow:") {
			mode = "allow"
			continue
		}
		if strings.HasPrefix(line, "deny:") {
			mode = "deny"
			continue
		}

		ipnet, ok := parseIPOrCIDR(line)
		if !ok {
			slog.Warn("acl: invalid IP/CIDR", "line", lineNum, "value", line)
			continue
		}

		if mode == "allow" {
			a.Allow = append(a.Allow, *ipnet)
		} else {
			a.Deny = append(a.Deny, *ipnet)
		}
	}

	return a, scanner.Err()
}

// FromRules builds an ACL from inline rule lists, as carried by the
// server's YAML configuration.
func FromRules(allow, deny []string) (*ACL, error) {
	a := &ACL{
		Allow: make([]net.IPNet, 0),
		Deny:  make([]net.IPNet, 0),
	}

	for i, rule := range allow {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		ipnet, ok := parseIPOrCIDR(rule)
		if !ok {
			slog.Warn("acl: invalid allow rule", "index", i, "value", rule)
			continue
		}
		a.Allow = append(a.Allow, *ipnet)
	}

	for i, rule := range deny {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		ipnet, ok := parseIPOrCIDR(rule)
		if !ok {
			slog.Warn("acl: invalid deny rule", "index", i, "value", rule)
			continue
		}
		a.Deny = append(a.Deny, *ipnet)
	}

	return a, nil
}

func parseIPOrCIDR(s string) (*net.IPNet, bool) {
	if _, ipnet, err := net.ParseCIDR(s); err == nil {
		return ipnet, true
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, false
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, true
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, true
}

// AllowQuery reports whether a query from ip should be processed.
// Deny rules are checked first; if an allow list exists, ip must also
// match one of its ranges.
func (a *ACL) AllowQuery(ip net.IP) bool {
	if len(a.Allow) == 0 && len(a.Deny) == 0 {
		return true
	}

	for _, deny := range a.Deny {
		if deny.Contains(ip) {
			return false
		}
	}

	if len(a.Allow) > 0 {
		for _, allow := range a.Allow {
			if allow.Contains(ip) {
				return true
			}
		}
		return false
	}

	return true
}
