// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package authority implements the non-recursive authoritative lookup
// engine: given a decoded query and a zone, it produces a response by
// walking the query name's ancestors looking for exact matches,
// delegations, and wildcards.
package authority

import (
	"github.com/samresto/dnscore/wire"
	"github.com/samresto/dnscore/zone"
)

// Outcome classifies which branch of the lookup state machine produced
// a response. Callers use it to drive metrics without re-deriving the
// classification from response fields.
type Outcome string

const (
	OutcomeNotImplemented Outcome = "not_implemented"
	OutcomeCNAME          Outcome = "cname"
	OutcomeExact          Outcome = "exact"
	OutcomeDelegation     Outcome = "delegation"
	OutcomeWildcard       Outcome = "wildcard"
	OutcomeNameError      Outcome = "name_error"
)

// Engine answers queries against a single zone.
type Engine struct {
	zone *zone.Zone
}

// NewEngine creates a lookup engine over z. z must not be mutated for
// the lifetime of the engine.
func NewEngine(z *zone.Zone) *Engine {
	return &Engine{zone: z}
}

// Serve answers a query message, returning the outcome alongside the
// response for metrics purposes. The response reuses the query's
// header ID and question section; only the first question is
// considered, per spec.
func (e *Engine) Serve(query wire.Message) (wire.Message, Outcome) {
	response := query
	response.Header.QueryResponse = true
	response.Answer = nil
	response.Authority = nil
	response.Additional = nil

	if len(query.Question) == 0 {
		response.Header.ResponseCode = wire.RCodeFormErr
		return response, OutcomeNotImplemented
	}
	question := query.Question[0]

	if response.Header.OpCode != wire.OpCodeQuery {
		response.Header.ResponseCode = wire.RCodeNotImp
		return response, OutcomeNotImplemented
	}

	var wildcardAnswers []wire.Record

	for _, ancestor := range question.Name.Ancestors() {
		nameRecords := e.zone.FindWithName(ancestor)

		if len(nameRecords) > 0 {
			wildcardAnswers = nil
		}

		if ancestor.Equal(question.Name) {
			if cname, ok := findCNAME(nameRecords); ok {
				response.Header.AuthoritativeAns = true
				response.Header.ResponseCode = wire.RCodeNoError
				response.Answer = []wire.Record{cname}
				return response, OutcomeCNAME
			}

			matched := filterByType(nameRecords, question.Type)
			if len(matched) > 0 {
				response.Header.AuthoritativeAns = true
				response.Header.ResponseCode = wire.RCodeNoError
				response.Answer = matched
				return response, OutcomeExact
			}
		}

		delegations := filterNS(nameRecords)
		if len(delegations) > 0 {
			response.Header.AuthoritativeAns = false
			response.Header.ResponseCode = wire.RCodeNoError
			response.Authority = delegations
			return response, OutcomeDelegation
		}

		if ancestor.IsRoot() {
			continue
		}

		if len(nameRecords) > 0 {
			continue
		}

		wildcardRecords := filterByType(e.zone.FindWithName(ancestor.ToWildcard()), question.Type)
		if len(wildcardRecords) > 0 {
			wildcardAnswers = wildcardRecords
		}
	}

	if wildcardAnswers != nil {
		response.Header.AuthoritativeAns = true
		response.Header.ResponseCode = wire.RCodeNoError
		answers := make([]wire.Record, len(wildcardAnswers))
		for i, r := range wildcardAnswers {
			answers[i] = r.WithName(question.Name)
		}
		response.Answer = answers
		return response, OutcomeWildcard
	}

	response.Header.ResponseCode = wire.RCodeNXDomain
	return response, OutcomeNameError
}

func findCNAME(records []wire.Record) (wire.Record, bool) {
	for _, r := range records {
		if r.Kind == wire.QTypeCNAME {
			return r, true
		}
	}
	return wire.Record{}, false
}

func filterByType(records []wire.Record, t wire.QType) []wire.Record {
	var out []wire.Record
	for _, r := range records {
		if r.Matches(t) {
			out = append(out, r)
		}
	}
	return out
}

func filterNS(records []wire.Record) []wire.Record {
	var out []wire.Record
	for _, r := range records {
		if r.Kind == wire.QTypeNS {
			out = append(out, r)
		}
	}
	return out
}
