// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package wire

// Question is a single entry in a message's question section.
type Question struct {
	Name  Name
	Type  QType
	Class QClass
}

func decodeQuestion(c *Cursor) (Question, error) {
	name, err := decodeName(c)
	if err != nil {
		return Question{}, err
	}
	typeVal, err := c.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	qtype, err := decodeQType(typeVal)
	if err != nil {
		return Question{}, err
	}
	classVal, err := c.ReadUint16()
	if err != nil {
		return Question{}, err
	}
	qclass, err := decodeQClass(classVal)
	if err != nil {
		return Question{}, err
	}
	return Question{Name: name, Type: qtype, Class: qclass}, nil
}

func (q Question) encode(c *Cursor) {
	q.Name.encode(c)
	c.WriteUint16(uint16(q.Type))
	c.WriteUint16(uint16(q.Class))
}
