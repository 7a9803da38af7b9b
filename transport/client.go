// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
)

// resolveAddr appends the default DNS port if nameserver carries no
// port of its own.
func resolveAddr(nameserver string) string {
	if _, _, err := net.SplitHostPort(nameserver); err == nil {
		return nameserver
	}
	return net.JoinHostPort(strings.Trim(nameserver, "[]"), "53")
}

// UDPClient sends one request per datagram and reads back a single
// datagram response, bounded by MaxResponseSize (512 without EDNS,
// the EDNS-advertised size otherwise).
type UDPClient struct {
	Nameserver      string
	MaxResponseSize int
}

// NewUDPClient creates a client dispatching to nameserver with the
// default (non-EDNS) response size bound.
func NewUDPClient(nameserver string) *UDPClient {
	return &UDPClient{Nameserver: nameserver, MaxResponseSize: MaxUDPSize}
}

// Send writes request as a single UDP datagram and returns the first
// datagram received in reply.
func (c *UDPClient) Send(ctx context.Context, request []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", resolveAddr(c.Nameserver))
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", c.Nameserver, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("transport: write: %w", err)
	}

	maxSize := c.MaxResponseSize
	if maxSize <= 0 {
		maxSize = MaxUDPSize
	}
	buf := make([]byte, maxSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("transport: read: %w", err)
	}
	return buf[:n], nil
}

// TCPClient sends a request and reads a response framed with a
// two-octet big-endian length prefix.
type TCPClient struct {
	Nameserver string
}

// NewTCPClient creates a client dispatching to nameserver over TCP.
func NewTCPClient(nameserver string) *TCPClient {
	return &TCPClient{Nameserver: nameserver}
}

// Send writes the length-prefixed request and returns the
// length-prefixed response payload.
func (c *TCPClient) Send(ctx context.Context, request []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", resolveAddr(c.Nameserver))
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", c.Nameserver, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(request)))
	if _, err := conn.Write(lenBuf[:]); err != nil {
		return nil, fmt.Errorf("transport: write length: %w", err)
	}
	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("transport: write request: %w", err)
	}

	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("transport: read length: %w", err)
	}
	respLen := binary.BigEndian.Uint16(lenBuf[:])
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}
	return resp, nil
}
