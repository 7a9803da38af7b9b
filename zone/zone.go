// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package zone holds the authoritative record set for a single zone
// and the loader that builds one from a zone file.
package zone

import "github.com/samresto/dnscore/wire"

// Zone is an immutable, name-keyed record set. It is built once by a
// loader and never mutated afterwards; concurrent lookups against it
// require no synchronization.
type Zone struct {
	Origin  wire.Name
	records map[string][]wire.Record
	// order preserves the declaration order of distinct owner names,
	// which FindWithName relies on to return records in file order.
	order []string
}

// New builds a Zone from a flat list of records, preserving the
// declaration order of both names and records sharing a name.
func New(origin wire.Name, records []wire.Record) *Zone {
	z := &Zone{Origin: origin, records: make(map[string][]wire.Record)}
	for _, r := range records {
		key := r.Name.String()
		if _, ok := z.records[key]; !ok {
			z.order = append(z.order, key)
		}
		z.records[key] = append(z.records[key], r)
	}
	return z
}

// FindWithName returns every record whose owner name equals n,
// preserving declaration order. The returned slice must not be
// mutated by the caller.
func (z *Zone) FindWithName(n wire.Name) []wire.Record {
	return z.records[n.String()]
}

// Names returns the distinct owner names carried by the zone, in
// declaration order.
func (z *Zone) Names() []string {
	return z.order
}
