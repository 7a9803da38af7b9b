// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package resolver

import (
	"fmt"
	"strings"

	"github.com/samresto/dnscore/wire"
)

// Detail selects how much of a response dnsresolve prints.
type Detail string

const (
	DetailMinimal  Detail = "minimal"
	DetailStandard Detail = "standard"
	DetailFull     Detail = "full"
)

// Request is a parsed dnsresolve invocation: a domain plus the
// freeform [type], [class] and [@nameserver] arguments, in any order,
// each appearing at most once.
type Request struct {
	Domain     string
	Type       wire.QType
	Class      wire.QClass
	Nameserver string // empty means "use the system default"
	Detail     Detail
	EDNS       bool
	ForceUDP   bool
	ForceTCP   bool
}

// ParseArgs parses a dnsresolve command line: a domain followed by any
// number of freeform type/class/@nameserver tokens and switches, in
// any order.
func ParseArgs(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("resolver: missing domain argument")
	}

	req := Request{
		Domain: toFQDN(args[0]),
		Type:   wire.QTypeA,
		Class:  wire.QClassIN,
		Detail: DetailStandard,
		EDNS:   true,
	}

	var typeSet, classSet, nsSet bool

	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case strings.HasPrefix(arg, "@"):
			if nsSet {
				return Request{}, fmt.Errorf("resolver: nameserver specified more than once")
			}
			req.Nameserver = strings.TrimPrefix(arg, "@")
			nsSet = true

		case arg == "--udp":
			req.ForceUDP = true
		case arg == "--tcp":
			req.ForceTCP = true
		case arg == "--no-edns":
			req.EDNS = false

		case arg == "--detail" || strings.HasPrefix(arg, "--detail="):
			var value string
			if strings.HasPrefix(arg, "--detail=") {
				value = strings.TrimPrefix(arg, "--detail=")
			} else {
				i++
				if i >= len(rest) {
					return Request{}, fmt.Errorf("resolver: --detail requires a value")
				}
				value = rest[i]
			}
			detail := Detail(value)
			switch detail {
			case DetailMinimal, DetailStandard, DetailFull:
				req.Detail = detail
			default:
				return Request{}, fmt.Errorf("resolver: unsupported detail level %q", value)
			}

		default:
			upper := strings.ToUpper(arg)
			if qtype, err := wire.ParseQType(upper); err == nil {
				if typeSet {
					return Request{}, fmt.Errorf("resolver: record type specified more than once")
				}
				req.Type = qtype
				typeSet = true
				continue
			}
			if class, err := wire.ParseClass(upper); err == nil {
				if classSet {
					return Request{}, fmt.Errorf("resolver: record class specified more than once")
				}
				req.Class = wire.QClass(class)
				classSet = true
				continue
			}
			return Request{}, fmt.Errorf("resolver: unrecognized argument %q", arg)
		}
	}

	if req.ForceUDP && req.ForceTCP {
		return Request{}, fmt.Errorf("resolver: --udp and --tcp are mutually exclusive")
	}

	return req, nil
}
