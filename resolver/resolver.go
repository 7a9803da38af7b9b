// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package resolver implements the command-line resolver client's
// query logic: request construction, EDNS, UDP-first dispatch with
// TCP retry on truncation, and the small collaborators (hosts file
// check, system nameserver discovery) it relies on.
package resolver

import (
	"context"
	"fmt"

	"github.com/samresto/dnscore/transport"
	"github.com/samresto/dnscore/wire"
)

// EDNSMaxResponseSize is the buffer size the resolver offers in its
// OPT pseudo-RR when EDNS is enabled.
const EDNSMaxResponseSize = 4096

// Options configures a single resolution.
type Options struct {
	Nameserver string // host[:port]; port defaults to 53
	EDNS       bool
	ForceUDP   bool // mutually exclusive with ForceTCP
	ForceTCP   bool
}

// Resolve builds a one-question request for name/qtype/qclass and
// dispatches it to opts.Nameserver: UDP first, retried over TCP if
// the response comes back truncated, unless a transport is forced.
func Resolve(ctx context.Context, name wire.Name, qtype wire.QType, qclass wire.QClass, opts Options) (wire.Message, error) {
	query := buildQuery(name, qtype, qclass, opts.EDNS)
	requestBytes := query.Encode()

	if opts.ForceTCP {
		return sendTCP(ctx, opts.Nameserver, requestBytes)
	}

	resp, err := sendUDP(ctx, opts.Nameserver, requestBytes, opts.EDNS)
	if err != nil {
		return wire.Message{}, err
	}
	if opts.ForceUDP || !resp.Header.Truncated {
		return resp, nil
	}
	return sendTCP(ctx, opts.Nameserver, requestBytes)
}

func buildQuery(name wire.Name, qtype wire.QType, qclass wire.QClass, edns bool) wire.Message {
	msg := wire.Message{
		Header: wire.Header{
			ID:               1,
			OpCode:           wire.OpCodeQuery,
			RecursionDesired: true,
		},
		Question: []wire.Question{
			{Name: name, Type: qtype, Class: qclass},
		},
	}
	if edns {
		msg.Additional = append(msg.Additional, wire.NewOPT(wire.OPTRecord{
			MaxResponseSize: EDNSMaxResponseSize,
		}))
	}
	return msg
}

func sendUDP(ctx context.Context, nameserver string, request []byte, edns bool) (wire.Message, error) {
	client := transport.NewUDPClient(nameserver)
	if edns {
		client.MaxResponseSize = EDNSMaxResponseSize
	}
	respBytes, err := client.Send(ctx, request)
	if err != nil {
		return wire.Message{}, fmt.Errorf("resolver: udp: %w", err)
	}
	resp, err := wire.Decode(respBytes)
	if err != nil {
		return wire.Message{}, fmt.Errorf("resolver: decode response: %w", err)
	}
	return resp, nil
}

func sendTCP(ctx context.Context, nameserver string, request []byte) (wire.Message, error) {
	client := transport.NewTCPClient(nameserver)
	respBytes, err := client.Send(ctx, request)
	if err != nil {
		return wire.Message{}, fmt.Errorf("resolver: tcp: %w", err)
	}
	resp, err := wire.Decode(respBytes)
	if err != nil {
		return wire.Message{}, fmt.Errorf("resolver: decode response: %w", err)
	}
	return resp, nil
}

// Succeeded reports whether resp represents a successful lookup.
func Succeeded(resp wire.Message) bool {
	return resp.Header.ResponseCode == wire.RCodeNoError
}
