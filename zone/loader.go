// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package zone

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/samresto/dnscore/wire"
)

// LoadFile parses a zone file and returns the Zone it describes. The
// format is a line-oriented key = "value" document: a top-level
// `name = "<origin>"` declaration followed by repeated `[[record]]`
// blocks, one per resource record. Blank lines and lines beginning
// with "#" are ignored.
//
// Example:
//
//	name = "example.com."
//
//	[[record]]
//	name = "example.com."
//	class = "IN"
//	ttl = 60
//	type = "A"
//	addr = "10.0.0.1"
func LoadFile(filename string) (*Zone, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("zone: open %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	var originFields map[string]string
	var records []wire.Record
	var current map[string]string

	flush := func() error {
		if current == nil {
			return nil
		}
		r, err := buildRecord(current)
		if err != nil {
			return fmt.Errorf("zone: %s: %w", filename, err)
		}
		records = append(records, r)
		current = nil
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line == "[[record]]" {
			if err := flush(); err != nil {
				return nil, err
			}
			current = make(map[string]string)
			continue
		}

		key, value, ok := parseFieldLine(line)
		if !ok {
			return nil, fmt.Errorf("zone: %s:%d: malformed line %q", filename, lineNum, line)
		}

		if current != nil {
			current[key] = value
			continue
		}

		if originFields == nil {
			originFields = make(map[string]string)
		}
		originFields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("zone: %s: %w", filename, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	originText, ok := originFields["name"]
	if !ok {
		return nil, fmt.Errorf("zone: %s: missing top-level name = \"<origin>\"", filename)
	}
	origin, err := wire.ParseName(originText)
	if err != nil {
		return nil, fmt.Errorf("zone: %s: invalid origin %q: %w", filename, originText, err)
	}

	return New(origin, records), nil
}

// parseFieldLine splits a "key = value" or `key = "value"` line.
func parseFieldLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func buildRecord(f map[string]string) (wire.Record, error) {
	nameText, ok := f["name"]
	if !ok {
		return wire.Record{}, fmt.Errorf("record missing required field \"name\"")
	}
	name, err := wire.ParseName(nameText)
	if err != nil {
		return wire.Record{}, fmt.Errorf("invalid name %q: %w", nameText, err)
	}

	class := wire.ClassIN
	if classText, ok := f["class"]; ok {
		class, err = wire.ParseClass(classText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid class %q: %w", classText, err)
		}
	}

	ttl, err := requireUint32(f, "ttl")
	if err != nil {
		return wire.Record{}, err
	}

	typeText, ok := f["type"]
	if !ok {
		return wire.Record{}, fmt.Errorf("record missing required field \"type\"")
	}
	qtype, err := wire.ParseQType(typeText)
	if err != nil {
		return wire.Record{}, fmt.Errorf("invalid type %q: %w", typeText, err)
	}

	switch qtype {
	case wire.QTypeA, wire.QTypeAAAA:
		addrText, err := requireField(f, "addr")
		if err != nil {
			return wire.Record{}, err
		}
		addr := net.ParseIP(addrText)
		if addr == nil {
			return wire.Record{}, fmt.Errorf("invalid addr %q", addrText)
		}
		if qtype == wire.QTypeA {
			return wire.NewA(name, class, ttl, addr), nil
		}
		return wire.NewAAAA(name, class, ttl, addr), nil

	case wire.QTypeNS, wire.QTypeMD, wire.QTypeMF, wire.QTypeCNAME,
		wire.QTypeMB, wire.QTypeMG, wire.QTypeMR, wire.QTypePTR:
		hostText, err := requireField(f, "host")
		if err != nil {
			return wire.Record{}, err
		}
		host, err := wire.ParseName(hostText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid host %q: %w", hostText, err)
		}
		return wire.NewHostRecord(qtype, name, class, ttl, host), nil

	case wire.QTypeSOA:
		originText, err := requireField(f, "origin")
		if err != nil {
			return wire.Record{}, err
		}
		origin, err := wire.ParseName(originText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid origin %q: %w", originText, err)
		}
		mailboxText, err := requireField(f, "mailbox")
		if err != nil {
			return wire.Record{}, err
		}
		mailbox, err := wire.ParseName(mailboxText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid mailbox %q: %w", mailboxText, err)
		}
		serial, err := requireUint32(f, "version")
		if err != nil {
			return wire.Record{}, err
		}
		refresh, err := requireUint32(f, "refresh")
		if err != nil {
			return wire.Record{}, err
		}
		retry, err := requireUint32(f, "retry")
		if err != nil {
			return wire.Record{}, err
		}
		expire, err := requireUint32(f, "expire")
		if err != nil {
			return wire.Record{}, err
		}
		minimum, err := requireUint32(f, "minimum")
		if err != nil {
			return wire.Record{}, err
		}
		return wire.NewSOA(name, class, ttl, wire.SOARecord{
			Origin: origin, Mailbox: mailbox, Serial: serial,
			Refresh: refresh, Retry: retry, Expire: expire, Minimum: minimum,
		}), nil

	case wire.QTypeHINFO:
		cpu, err := requireField(f, "cpu")
		if err != nil {
			return wire.Record{}, err
		}
		os, err := requireField(f, "os")
		if err != nil {
			return wire.Record{}, err
		}
		return wire.NewHINFO(name, class, ttl, cpu, os), nil

	case wire.QTypeMINFO:
		rText, err := requireField(f, "rmailbox")
		if err != nil {
			return wire.Record{}, err
		}
		rMailbox, err := wire.ParseName(rText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid rmailbox %q: %w", rText, err)
		}
		eText, err := requireField(f, "emailbox")
		if err != nil {
			return wire.Record{}, err
		}
		eMailbox, err := wire.ParseName(eText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid emailbox %q: %w", eText, err)
		}
		return wire.NewMINFO(name, class, ttl, rMailbox, eMailbox), nil

	case wire.QTypeMX:
		priority, err := requireUint16(f, "priority")
		if err != nil {
			return wire.Record{}, err
		}
		hostText, err := requireField(f, "host")
		if err != nil {
			return wire.Record{}, err
		}
		host, err := wire.ParseName(hostText)
		if err != nil {
			return wire.Record{}, fmt.Errorf("invalid host %q: %w", hostText, err)
		}
		return wire.NewMX(name, class, ttl, priority, host), nil

	case wire.QTypeTXT:
		text, err := requireField(f, "content")
		if err != nil {
			return wire.Record{}, err
		}
		return wire.NewTXT(name, class, ttl, text), nil

	default:
		return wire.Record{}, fmt.Errorf("unsupported record type %q in zone file", typeText)
	}
}

func requireField(f map[string]string, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", fmt.Errorf("record missing required field %q", key)
	}
	return v, nil
}

func requireUint32(f map[string]string, key string) (uint32, error) {
	v, err := requireField(f, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return uint32(n), nil
}

func requireUint16(f map[string]string, key string) (uint16, error) {
	v, err := requireField(f, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return uint16(n), nil
}
