// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Command dnsresolve is a one-shot DNS lookup client: it builds a
// single question, sends it to a nameserver over UDP (retrying over
// TCP on truncation), and prints the answer.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samresto/dnscore/resolver"
	"github.com/samresto/dnscore/wire"
)

const defaultTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	req, err := resolver.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if resolver.HostsContains(req.Domain) {
		fmt.Fprintf(os.Stderr, "warning: %s is present in hosts file\n", req.Domain)
	}

	nameserver := req.Nameserver
	if nameserver == "" {
		nameserver, err = resolver.DefaultNameserver()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	name, err := wire.ParseName(req.Domain)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	resp, err := resolver.Resolve(ctx, name, req.Type, req.Class, resolver.Options{
		Nameserver: nameserver,
		EDNS:       req.EDNS,
		ForceUDP:   req.ForceUDP,
		ForceTCP:   req.ForceTCP,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	printResponse(resp, req.Detail)

	if !resolver.Succeeded(resp) {
		return 1
	}
	return 0
}

func printResponse(resp wire.Message, detail resolver.Detail) {
	if detail == resolver.DetailFull {
		fmt.Printf(";; opcode: %s, status: %s, id: %d\n", resp.Header.OpCode, resp.Header.ResponseCode, resp.Header.ID)
		fmt.Printf(";; flags: qr=%v aa=%v tc=%v rd=%v ra=%v\n",
			resp.Header.QueryResponse, resp.Header.AuthoritativeAns, resp.Header.Truncated,
			resp.Header.RecursionDesired, resp.Header.RecursionAvailable)
	}

	if !resolver.Succeeded(resp) {
		fmt.Printf(";; %s\n", resp.Header.ResponseCode)
		return
	}

	for _, rr := range resp.Answer {
		fmt.Println(formatRecord(rr))
	}

	if detail == resolver.DetailFull {
		for _, rr := range resp.Authority {
			fmt.Println(";; AUTHORITY: " + formatRecord(rr))
		}
		for _, rr := range resp.Additional {
			fmt.Println(";; ADDITIONAL: " + formatRecord(rr))
		}
	}
}

func formatRecord(rr wire.Record) string {
	switch rr.Kind {
	case wire.QTypeA, wire.QTypeAAAA:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", rr.Name, rr.TTL, rr.Class, rr.Kind, rr.Addr)
	case wire.QTypeCNAME, wire.QTypeNS, wire.QTypePTR:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", rr.Name, rr.TTL, rr.Class, rr.Kind, rr.Host.Host)
	case wire.QTypeMX:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t%d %s", rr.Name, rr.TTL, rr.Class, rr.Kind, rr.MX.Priority, rr.MX.Host)
	case wire.QTypeTXT:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t%q", rr.Name, rr.TTL, rr.Class, rr.Kind, rr.TXT.Content)
	case wire.QTypeSOA:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t%s %s %d %d %d %d %d",
			rr.Name, rr.TTL, rr.Class, rr.Kind, rr.SOA.Origin, rr.SOA.Mailbox,
			rr.SOA.Serial, rr.SOA.Refresh, rr.SOA.Retry, rr.SOA.Expire, rr.SOA.Minimum)
	default:
		return fmt.Sprintf("%s\t%d\t%s\t%s\t(unprintable)", rr.Name, rr.TTL, rr.Class, rr.Kind)
	}
}
