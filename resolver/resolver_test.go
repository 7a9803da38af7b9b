// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package resolver

import (
	"testing"

	"github.com/samresto/dnscore/wire"
)

func TestHostsContainsExactMatch(t *testing.T) {
	input := "127.0.0.1 localhost\n::1 localhost\n"
	if !hostsContains(input, "localhost") {
		t.Fatal("expected localhost to match")
	}
}

func TestHostsContainsFQDNNormalization(t *testing.T) {
	input := "192.168.1.10 example.com\n"
	if !hostsContains(input, "example.com.") {
		t.Fatal("expected example.com to match example.com. after FQDN normalization")
	}
}

func TestHostsContainsSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# this is a comment\n\n127.0.0.1 localhost\n"
	if !hostsContains(input, "localhost") {
		t.Fatal("expected localhost to match despite leading comment/blank line")
	}
}

func TestHostsContainsNoMatch(t *testing.T) {
	input := "127.0.0.1 localhost\n"
	if hostsContains(input, "example.com.") {
		t.Fatal("did not expect example.com. to match")
	}
}

func TestParseResolvConfFindsFirstNameserver(t *testing.T) {
	content := "# comment\nnameserver 8.8.8.8\nnameserver 1.1.1.1\n"
	ns, err := parseResolvConf(content)
	if err != nil {
		t.Fatalf("parseResolvConf: %v", err)
	}
	if ns != "8.8.8.8" {
		t.Fatalf("expected 8.8.8.8, got %s", ns)
	}
}

func TestParseResolvConfNoNameserver(t *testing.T) {
	if _, err := parseResolvConf("domain example.com\n"); err == nil {
		t.Fatal("expected error when no nameserver entry is present")
	}
}

func TestParseArgsDomainOnly(t *testing.T) {
	req, err := ParseArgs([]string{"example.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if req.Domain != "example.com." {
		t.Errorf("expected FQDN example.com., got %s", req.Domain)
	}
	if req.Type != wire.QTypeA {
		t.Errorf("expected default type A, got %s", req.Type)
	}
	if req.Nameserver != "" {
		t.Errorf("expected empty nameserver, got %s", req.Nameserver)
	}
}

func TestParseArgsTypeAndNameserverAnyOrder(t *testing.T) {
	req, err := ParseArgs([]string{"example.com", "@8.8.8.8", "MX"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if req.Type != wire.QTypeMX {
		t.Errorf("expected MX, got %s", req.Type)
	}
	if req.Nameserver != "8.8.8.8" {
		t.Errorf("expected nameserver 8.8.8.8, got %s", req.Nameserver)
	}

	req2, err := ParseArgs([]string{"example.com", "MX", "@8.8.8.8"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if req2.Type != wire.QTypeMX || req2.Nameserver != "8.8.8.8" {
		t.Fatal("expected same parse result regardless of argument order")
	}
}

func TestParseArgsClassToken(t *testing.T) {
	req, err := ParseArgs([]string{"example.com", "CH", "TXT"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if req.Class != wire.QClassCH {
		t.Errorf("expected class CH, got %s", req.Class)
	}
	if req.Type != wire.QTypeTXT {
		t.Errorf("expected type TXT, got %s", req.Type)
	}
}

func TestParseArgsDuplicateTypeRejected(t *testing.T) {
	if _, err := ParseArgs([]string{"example.com", "A", "MX"}); err == nil {
		t.Fatal("expected error on duplicate type argument")
	}
}

func TestParseArgsDuplicateNameserverRejected(t *testing.T) {
	if _, err := ParseArgs([]string{"example.com", "@8.8.8.8", "@1.1.1.1"}); err == nil {
		t.Fatal("expected error on duplicate nameserver argument")
	}
}

func TestParseArgsSwitches(t *testing.T) {
	req, err := ParseArgs([]string{"example.com", "--tcp", "--no-edns", "--detail=full"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !req.ForceTCP || req.EDNS || req.Detail != DetailFull {
		t.Fatalf("unexpected parse result: %+v", req)
	}
}

func TestParseArgsMutuallyExclusiveTransports(t *testing.T) {
	if _, err := ParseArgs([]string{"example.com", "--udp", "--tcp"}); err == nil {
		t.Fatal("expected error when both --udp and --tcp are given")
	}
}

func TestParseArgsMissingDomain(t *testing.T) {
	if _, err := ParseArgs(nil); err == nil {
		t.Fatal("expected error on missing domain")
	}
}

func TestSucceeded(t *testing.T) {
	resp := wire.Message{Header: wire.Header{ResponseCode: wire.RCodeNoError}}
	if !Succeeded(resp) {
		t.Fatal("expected NoError response to report success")
	}
	resp.Header.ResponseCode = wire.RCodeNXDomain
	if Succeeded(resp) {
		t.Fatal("expected NXDomain response to report failure")
	}
}
