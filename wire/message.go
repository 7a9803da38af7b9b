// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package wire

// Message is a full DNS message: header plus its four sections. This
// is the top-level value the transport layer reads requests into and
// writes responses out of.
type Message struct {
	Header     Header
	Question   []Question
	Answer     []Record
	Authority  []Record
	Additional []Record
}

// MaxUDPSize is the conventional maximum size of a DNS message sent
// without EDNS, per RFC 1035.
const MaxUDPSize = 512

// Decode parses a full message from raw wire bytes.
func Decode(data []byte) (Message, error) {
	c := NewCursorFromBytes(data)

	header, qdcount, ancount, nscount, arcount, err := decodeHeader(c)
	if err != nil {
		return Message{}, err
	}

	m := Message{Header: header}

	for i := uint16(0); i < qdcount; i++ {
		q, err := decodeQuestion(c)
		if err != nil {
			return Message{}, err
		}
		m.Question = append(m.Question, q)
	}

	for i := uint16(0); i < ancount; i++ {
		r, err := decodeRecord(c)
		if err != nil {
			return Message{}, err
		}
		m.Answer = append(m.Answer, r)
	}

	for i := uint16(0); i < nscount; i++ {
		r, err := decodeRecord(c)
		if err != nil {
			return Message{}, err
		}
		m.Authority = append(m.Authority, r)
	}

	for i := uint16(0); i < arcount; i++ {
		r, err := decodeRecord(c)
		if err != nil {
			return Message{}, err
		}
		m.Additional = append(m.Additional, r)
	}

	return m, nil
}

// Encode serializes the message to wire bytes, applying name
// compression across the whole message (question through additional).
func (m Message) Encode() []byte {
	c := NewCursor()

	m.Header.encode(c,
		uint16(len(m.Question)), uint16(len(m.Answer)),
		uint16(len(m.Authority)), uint16(len(m.Additional)))

	for _, q := range m.Question {
		q.encode(c)
	}
	for _, r := range m.Answer {
		r.encode(c)
	}
	for _, r := range m.Authority {
		r.encode(c)
	}
	for _, r := range m.Additional {
		r.encode(c)
	}

	return c.Used()
}

// FindOPT returns the OPT pseudo-record in the additional section, if
// present, along with whether one was found.
func (m Message) FindOPT() (Record, bool) {
	for _, r := range m.Additional {
		if r.Kind == QTypeOPT {
			return r, true
		}
	}
	return Record{}, false
}
