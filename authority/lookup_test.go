// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package authority

import (
	"net"
	"testing"

	"github.com/samresto/dnscore/wire"
	"github.com/samresto/dnscore/zone"
)

func buildTestZone() *zone.Zone {
	origin := wire.MustParseName("example.com.")
	records := []wire.Record{
		wire.NewSOA(origin, wire.ClassIN, 3600, wire.SOARecord{
			Origin: wire.MustParseName("ns1.example.com."), Mailbox: wire.MustParseName("hostmaster.example.com."),
			Serial: 1, Refresh: 1, Retry: 1, Expire: 1, Minimum: 1,
		}),
		wire.NewA(origin, wire.ClassIN, 60, net.ParseIP("10.0.0.1")),
		wire.NewHostRecord(wire.QTypeCNAME, wire.MustParseName("alias.example.com."), wire.ClassIN, 60, wire.MustParseName("example.com.")),
		wire.NewHostRecord(wire.QTypeNS, wire.MustParseName("sub.example.com."), wire.ClassIN, 60, wire.MustParseName("ns1.sub.example.com.")),
		wire.NewA(wire.MustParseName("*.example.com."), wire.ClassIN, 60, net.ParseIP("10.0.0.9")),
	}
	return zone.New(origin, records)
}

func query(name wire.Name, t wire.QType) wire.Message {
	return wire.Message{
		Header:   wire.Header{ID: 42, OpCode: wire.OpCodeQuery, RecursionDesired: true},
		Question: []wire.Question{{Name: name, Type: t, Class: wire.QClassIN}},
	}
}

func TestServeNotImplementedOnNonQueryOpcode(t *testing.T) {
	e := NewEngine(buildTestZone())
	q := query(wire.MustParseName("example.com."), wire.QTypeA)
	q.Header.OpCode = wire.OpCodeStatus

	resp, outcome := e.Serve(q)
	if outcome != OutcomeNotImplemented {
		t.Fatalf("outcome = %v, want NotImplemented", outcome)
	}
	if resp.Header.ResponseCode != wire.RCodeNotImp {
		t.Fatalf("resp_code = %v, want NotImp", resp.Header.ResponseCode)
	}
	if !resp.Header.QueryResponse {
		t.Fatalf("expected is_response to be set")
	}
	if resp.Header.ID != q.Header.ID {
		t.Fatalf("response ID mismatch")
	}
}

func TestServeExactAnswer(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("example.com."), wire.QTypeA))

	if outcome != OutcomeExact {
		t.Fatalf("outcome = %v, want Exact", outcome)
	}
	if !resp.Header.AuthoritativeAns || resp.Header.ResponseCode != wire.RCodeNoError {
		t.Fatalf("unexpected header %+v", resp.Header)
	}
	if len(resp.Answer) != 1 || !resp.Answer[0].Addr.Equal(net.ParseIP("10.0.0.1")) {
		t.Fatalf("unexpected answer %+v", resp.Answer)
	}
}

func TestServeCNAMEAnswer(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("alias.example.com."), wire.QTypeA))

	if outcome != OutcomeCNAME {
		t.Fatalf("outcome = %v, want CNAME", outcome)
	}
	if len(resp.Answer) != 1 || resp.Answer[0].Kind != wire.QTypeCNAME {
		t.Fatalf("unexpected answer %+v", resp.Answer)
	}
}

func TestServeDelegation(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("host.sub.example.com."), wire.QTypeA))

	if outcome != OutcomeDelegation {
		t.Fatalf("outcome = %v, want Delegation", outcome)
	}
	if resp.Header.AuthoritativeAns {
		t.Fatalf("delegation responses must not be authoritative")
	}
	if len(resp.Authority) != 1 || resp.Authority[0].Kind != wire.QTypeNS {
		t.Fatalf("unexpected authority section %+v", resp.Authority)
	}
}

func TestServeWildcardAnswer(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("anything.example.com."), wire.QTypeA))

	if outcome != OutcomeWildcard {
		t.Fatalf("outcome = %v, want Wildcard", outcome)
	}
	if len(resp.Answer) != 1 || !resp.Answer[0].Name.Equal(wire.MustParseName("anything.example.com.")) {
		t.Fatalf("unexpected wildcard answer %+v", resp.Answer)
	}
}

func TestServeNameError(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("nope.other.com."), wire.QTypeA))

	if outcome != OutcomeNameError {
		t.Fatalf("outcome = %v, want NameError", outcome)
	}
	if resp.Header.ResponseCode != wire.RCodeNXDomain {
		t.Fatalf("resp_code = %v, want NXDomain", resp.Header.ResponseCode)
	}
}

func TestServeDelegationTakesPrecedenceOverWildcard(t *testing.T) {
	// example.com carries a wildcard, but sub.example.com delegates;
	// delegation found on the walk down must win over any wildcard.
	origin := wire.MustParseName("example.com.")
	records := []wire.Record{
		wire.NewA(origin, wire.ClassIN, 60, net.ParseIP("10.0.0.1")),
		wire.NewA(wire.MustParseName("*.example.com."), wire.ClassIN, 60, net.ParseIP("10.0.0.9")),
		wire.NewHostRecord(wire.QTypeNS, wire.MustParseName("sub.example.com."), wire.ClassIN, 60, wire.MustParseName("ns1.sub.example.com.")),
	}
	z := zone.New(origin, records)
	e := NewEngine(z)

	resp, outcome := e.Serve(query(wire.MustParseName("host.sub.example.com."), wire.QTypeA))
	if outcome != OutcomeDelegation {
		t.Fatalf("outcome = %v, want Delegation (explicit NS data must win over wildcard)", outcome)
	}
	if len(resp.Authority) != 1 {
		t.Fatalf("unexpected authority %+v", resp.Authority)
	}
}

func TestServeALLTypeMatchesAnyRecord(t *testing.T) {
	e := NewEngine(buildTestZone())
	resp, outcome := e.Serve(query(wire.MustParseName("example.com."), wire.QTypeALL))

	if outcome != OutcomeExact {
		t.Fatalf("outcome = %v, want Exact", outcome)
	}
	if len(resp.Answer) != 2 {
		t.Fatalf("expected SOA and A records, got %+v", resp.Answer)
	}
}
