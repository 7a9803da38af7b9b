// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package resolver

import (
	"os"
	"strings"
)

const hostsPath = "/etc/hosts"

// HostsContains reports whether host (a fully qualified domain name)
// appears as an entry in the system hosts file. This is advisory only
// — the resolver still queries the nameserver regardless of the
// result, it just warns the caller that a local override may apply.
func HostsContains(host string) bool {
	content, err := os.ReadFile(hostsPath)
	if err != nil {
		return false
	}
	return hostsContains(string(content), host)
}

func hostsContains(input, host string) bool {
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if field == host || toFQDN(field) == host {
				return true
			}
		}
	}
	return false
}

// toFQDN appends a trailing root dot if domain is missing one.
func toFQDN(domain string) string {
	if strings.HasSuffix(domain, ".") {
		return domain
	}
	return domain + "."
}
