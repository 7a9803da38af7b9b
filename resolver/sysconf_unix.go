// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

//go:build !windows

package resolver

import (
	"fmt"
	"os"
	"strings"
)

const resolvConfPath = "/etc/resolv.conf"

// DefaultNameserver returns the first "nameserver" entry found in
// /etc/resolv.conf.
func DefaultNameserver() (string, error) {
	content, err := os.ReadFile(resolvConfPath)
	if err != nil {
		return "", fmt.Errorf("resolver: read %s: %w", resolvConfPath, err)
	}
	return parseResolvConf(string(content))
}

func parseResolvConf(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("resolver: no nameserver entry in %s", resolvConfPath)
}
