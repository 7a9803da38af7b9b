// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

//go:build windows

package resolver

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const tcpipInterfacesKey = `SYSTEM\CurrentControlSet\Services\Tcpip\Parameters\Interfaces`

// DefaultNameserver returns the first configured DNS server found
// among the machine's network interfaces, read from the registry
// under the Tcpip parameters key. DhcpNameServer is preferred over the
// statically configured NameServer value, matching how Windows itself
// resolves the active setting. Interfaces are visited in registry
// enumeration order and the first one with a server wins; the adapter
// behind the default route is not singled out.
func DefaultNameserver() (string, error) {
	root, err := registry.OpenKey(registry.LOCAL_MACHINE, tcpipInterfacesKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return "", fmt.Errorf("resolver: open %s: %w", tcpipInterfacesKey, err)
	}
	defer root.Close()

	names, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return "", fmt.Errorf("resolver: enumerate interfaces: %w", err)
	}

	for _, name := range names {
		ifaceKey, err := registry.OpenKey(registry.LOCAL_MACHINE, tcpipInterfacesKey+`\`+name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		if ns := firstNameserver(ifaceKey); ns != "" {
			ifaceKey.Close()
			return ns, nil
		}
		ifaceKey.Close()
	}

	return "", fmt.Errorf("resolver: no configured nameserver found")
}

func firstNameserver(key registry.Key) string {
	for _, valueName := range []string{"DhcpNameServer", "NameServer"} {
		v, _, err := key.GetStringValue(valueName)
		if err != nil || v == "" {
			continue
		}
		// Windows stores multiple servers space- or comma-separated;
		// the first entry is the preferred one.
		for _, sep := range []string{",", " "} {
			if idx := indexByte(v, sep); idx >= 0 {
				v = v[:idx]
				break
			}
		}
		return v
	}
	return ""
}

func indexByte(s, sep string) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}
