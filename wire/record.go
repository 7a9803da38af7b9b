// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

package wire

import "net"

// RRType is the wire type code of a resource record. It shares its
// numbering with QType since every RRType value is also a valid
// question type.
type RRType = QType

// HostRecord is the shared rdata shape for every record kind whose
// payload is a single compressed name: NS, MD, MF, CNAME, MB, MG, MR,
// and PTR.
type HostRecord struct {
	Host Name
}

// SOARecord is the start-of-authority payload.
type SOARecord struct {
	Origin  Name
	Mailbox Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// NULLRecord carries opaque rdata.
type NULLRecord struct {
	Data []byte
}

// WKSRecord describes a well-known service.
type WKSRecord struct {
	Addr     net.IP
	Protocol uint8
	Bitmap   []byte
}

// HINFORecord carries host information as two character-strings.
type HINFORecord struct {
	CPU string
	OS  string
}

// MINFORecord carries mailbox responsible/error addresses.
type MINFORecord struct {
	RMailbox Name
	EMailbox Name
}

// MXRecord is a mail exchange preference and host.
type MXRecord struct {
	Priority uint16
	Host     Name
}

// TXTRecord holds the concatenation of a record's character-strings.
type TXTRecord struct {
	Content string
}

// EDNSOption is one {code, data} option carried by an OPT record.
type EDNSOption struct {
	Code uint16
	Data []byte
}

// OPTRecord is the EDNS pseudo-RR. Its wire class slot carries
// MaxResponseSize and its wire ttl slot packs ExtendedRCode, Version
// and DNSSECOK.
type OPTRecord struct {
	MaxResponseSize uint16
	ExtendedRCode   uint8
	Version         uint8
	DNSSECOK        bool
	Options         []EDNSOption
}

// Record is a DNS resource record. Kind selects which of the payload
// pointers is populated; all others are nil. This is the idiomatic Go
// rendition of a tagged union over the eighteen supported record
// kinds (spec §3).
type Record struct {
	Kind  RRType
	Name  Name
	Class Class
	TTL   uint32

	Addr  net.IP // A, AAAA
	Host  *HostRecord
	SOA   *SOARecord
	NULL  *NULLRecord
	WKS   *WKSRecord
	HINFO *HINFORecord
	MINFO *MINFORecord
	MX    *MXRecord
	TXT   *TXTRecord
	OPT   *OPTRecord
}

// NewA creates an A record.
func NewA(name Name, class Class, ttl uint32, addr net.IP) Record {
	return Record{Kind: QTypeA, Name: name, Class: class, TTL: ttl, Addr: addr.To4()}
}

// NewAAAA creates an AAAA record.
func NewAAAA(name Name, class Class, ttl uint32, addr net.IP) Record {
	return Record{Kind: QTypeAAAA, Name: name, Class: class, TTL: ttl, Addr: addr.To16()}
}

// NewHostRecord creates a record whose payload is a single compressed
// name: kind must be one of NS, MD, MF, CNAME, MB, MG, MR, PTR.
func NewHostRecord(kind RRType, name Name, class Class, ttl uint32, host Name) Record {
	return Record{Kind: kind, Name: name, Class: class, TTL: ttl, Host: &HostRecord{Host: host}}
}

// NewSOA creates an SOA record.
func NewSOA(name Name, class Class, ttl uint32, soa SOARecord) Record {
	return Record{Kind: QTypeSOA, Name: name, Class: class, TTL: ttl, SOA: &soa}
}

// NewNULL creates a NULL record.
func NewNULL(name Name, class Class, ttl uint32, data []byte) Record {
	return Record{Kind: QTypeNULL, Name: name, Class: class, TTL: ttl, NULL: &NULLRecord{Data: data}}
}

// NewWKS creates a WKS record.
func NewWKS(name Name, class Class, ttl uint32, wks WKSRecord) Record {
	return Record{Kind: QTypeWKS, Name: name, Class: class, TTL: ttl, WKS: &wks}
}

// NewHINFO creates a HINFO record.
func NewHINFO(name Name, class Class, ttl uint32, cpu, os string) Record {
	return Record{Kind: QTypeHINFO, Name: name, Class: class, TTL: ttl, HINFO: &HINFORecord{CPU: cpu, OS: os}}
}

// NewMINFO creates a MINFO record.
func NewMINFO(name Name, class Class, ttl uint32, rMailbox, eMailbox Name) Record {
	return Record{Kind: QTypeMINFO, Name: name, Class: class, TTL: ttl, MINFO: &MINFORecord{RMailbox: rMailbox, EMailbox: eMailbox}}
}

// NewMX creates an MX record.
func NewMX(name Name, class Class, ttl uint32, priority uint16, host Name) Record {
	return Record{Kind: QTypeMX, Name: name, Class: class, TTL: ttl, MX: &MXRecord{Priority: priority, Host: host}}
}

// NewTXT creates a TXT record.
func NewTXT(name Name, class Class, ttl uint32, content string) Record {
	return Record{Kind: QTypeTXT, Name: name, Class: class, TTL: ttl, TXT: &TXTRecord{Content: content}}
}

// NewOPT creates an OPT pseudo-RR. Its Name is always the root.
func NewOPT(opt OPTRecord) Record {
	return Record{Kind: QTypeOPT, Name: Name{labels: []string{""}}, OPT: &opt}
}

// Matches reports whether the record satisfies a question of type t,
// where QTypeALL matches any kind.
func (r Record) Matches(t QType) bool {
	return r.Kind == RRType(t) || t == QTypeALL
}

// WithName returns a copy of the record with its owner name replaced.
// Used to rewrite wildcard answers to the queried name.
func (r Record) WithName(name Name) Record {
	r.Name = name
	return r
}

func decodeRecord(c *Cursor) (Record, error) {
	name, err := decodeName(c)
	if err != nil {
		return Record{}, err
	}

	typeVal, err := c.ReadUint16()
	if err != nil {
		return Record{}, err
	}
	kind := RRType(typeVal)

	if kind == QTypeOPT {
		maxResp, err := c.ReadUint16()
		if err != nil {
			return Record{}, err
		}
		ttlRaw, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		rdlen, err := c.ReadUint16()
		if err != nil {
			return Record{}, err
		}
		data, err := c.ReadExact(int(rdlen))
		if err != nil {
			return Record{}, err
		}
		opts, err := decodeEDNSOptions(data)
		if err != nil {
			return Record{}, err
		}
		return Record{
			Kind: kind,
			Name: name,
			TTL:  ttlRaw,
			OPT: &OPTRecord{
				MaxResponseSize: maxResp,
				ExtendedRCode:   uint8(ttlRaw >> 24),
				Version:         uint8(ttlRaw >> 16),
				DNSSECOK:        (ttlRaw>>15)&1 == 1,
				Options:         opts,
			},
		}, nil
	}

	classVal, err := c.ReadUint16()
	if err != nil {
		return Record{}, err
	}
	class, err := decodeRecordClass(classVal)
	if err != nil {
		return Record{}, err
	}
	ttl, err := c.ReadUint32()
	if err != nil {
		return Record{}, err
	}
	rdlen, err := c.ReadUint16()
	if err != nil {
		return Record{}, err
	}

	switch kind {
	case QTypeA:
		addr, err := c.ReadExact(4)
		if err != nil {
			return Record{}, err
		}
		return NewA(name, class, ttl, net.IP(addr)), nil

	case QTypeAAAA:
		addr, err := c.ReadExact(16)
		if err != nil {
			return Record{}, err
		}
		return NewAAAA(name, class, ttl, net.IP(addr)), nil

	case QTypeNS, QTypeMD, QTypeMF, QTypeCNAME, QTypeMB, QTypeMG, QTypeMR, QTypePTR:
		host, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		return NewHostRecord(kind, name, class, ttl, host), nil

	case QTypeSOA:
		origin, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		mailbox, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		serial, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		refresh, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		retry, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		expire, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		minimum, err := c.ReadUint32()
		if err != nil {
			return Record{}, err
		}
		return NewSOA(name, class, ttl, SOARecord{
			Origin: origin, Mailbox: mailbox, Serial: serial,
			Refresh: refresh, Retry: retry, Expire: expire, Minimum: minimum,
		}), nil

	case QTypeNULL:
		data, err := c.ReadExact(int(rdlen))
		if err != nil {
			return Record{}, err
		}
		return NewNULL(name, class, ttl, data), nil

	case QTypeWKS:
		addr, err := c.ReadExact(4)
		if err != nil {
			return Record{}, err
		}
		protocol, err := c.Read()
		if err != nil {
			return Record{}, err
		}
		if rdlen < 5 {
			return Record{}, ErrFormat
		}
		bitmap, err := c.ReadExact(int(rdlen) - 5)
		if err != nil {
			return Record{}, err
		}
		return NewWKS(name, class, ttl, WKSRecord{Addr: net.IP(addr), Protocol: protocol, Bitmap: bitmap}), nil

	case QTypeHINFO:
		cpu, err := decodeCharString(c)
		if err != nil {
			return Record{}, err
		}
		os, err := decodeCharString(c)
		if err != nil {
			return Record{}, err
		}
		return NewHINFO(name, class, ttl, cpu, os), nil

	case QTypeMINFO:
		rMailbox, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		eMailbox, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		return NewMINFO(name, class, ttl, rMailbox, eMailbox), nil

	case QTypeMX:
		priority, err := c.ReadUint16()
		if err != nil {
			return Record{}, err
		}
		host, err := decodeName(c)
		if err != nil {
			return Record{}, err
		}
		return NewMX(name, class, ttl, priority, host), nil

	case QTypeTXT:
		var content []byte
		var read uint16
		for read < rdlen {
			length, err := c.Read()
			if err != nil {
				return Record{}, err
			}
			chunk, err := c.ReadExact(int(length))
			if err != nil {
				return Record{}, err
			}
			content = append(content, chunk...)
			read += uint16(length) + 1
		}
		return NewTXT(name, class, ttl, string(content)), nil

	default:
		return Record{}, ErrFormat
	}
}

func decodeCharString(c *Cursor) (string, error) {
	length, err := c.Read()
	if err != nil {
		return "", err
	}
	data, err := c.ReadExact(int(length))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeCharString(c *Cursor, s string) {
	c.WriteByte(byte(len(s)))
	c.WriteAll([]byte(s))
}

func decodeEDNSOptions(data []byte) ([]EDNSOption, error) {
	dc := NewCursorFromBytes(data)
	var opts []EDNSOption
	for dc.Pos() < len(data) {
		code, err := dc.ReadUint16()
		if err != nil {
			return nil, err
		}
		length, err := dc.ReadUint16()
		if err != nil {
			return nil, err
		}
		optData, err := dc.ReadExact(int(length))
		if err != nil {
			return nil, err
		}
		opts = append(opts, EDNSOption{Code: code, Data: optData})
	}
	return opts, nil
}

func encodeEDNSOptions(c *Cursor, opts []EDNSOption) {
	for _, opt := range opts {
		c.WriteUint16(opt.Code)
		c.WriteUint16(uint16(len(opt.Data)))
		c.WriteAll(opt.Data)
	}
}

func (r Record) encode(c *Cursor) {
	r.Name.encode(c)
	c.WriteUint16(uint16(r.Kind))

	if r.Kind == QTypeOPT {
		c.WriteUint16(r.OPT.MaxResponseSize)
		ttl := uint32(r.OPT.ExtendedRCode)<<24 | uint32(r.OPT.Version)<<16
		if r.OPT.DNSSECOK {
			ttl |= 1 << 15
		}
		c.WriteUint32(ttl)
		pos := c.Pos()
		c.WriteUint16(0)
		encodeEDNSOptions(c, r.OPT.Options)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))
		return
	}

	c.WriteUint16(uint16(r.Class))
	c.WriteUint32(r.TTL)

	switch r.Kind {
	case QTypeA, QTypeAAAA:
		c.WriteUint16(uint16(len(r.Addr)))
		c.WriteAll(r.Addr)

	case QTypeNS, QTypeMD, QTypeMF, QTypeCNAME, QTypeMB, QTypeMG, QTypeMR, QTypePTR:
		pos := c.Pos()
		c.WriteUint16(0)
		r.Host.Host.encode(c)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeSOA:
		pos := c.Pos()
		c.WriteUint16(0)
		r.SOA.Origin.encode(c)
		r.SOA.Mailbox.encode(c)
		c.WriteUint32(r.SOA.Serial)
		c.WriteUint32(r.SOA.Refresh)
		c.WriteUint32(r.SOA.Retry)
		c.WriteUint32(r.SOA.Expire)
		c.WriteUint32(r.SOA.Minimum)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeNULL:
		c.WriteUint16(uint16(len(r.NULL.Data)))
		c.WriteAll(r.NULL.Data)

	case QTypeWKS:
		pos := c.Pos()
		c.WriteUint16(0)
		c.WriteAll(r.WKS.Addr.To4())
		c.WriteByte(r.WKS.Protocol)
		c.WriteAll(r.WKS.Bitmap)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeHINFO:
		pos := c.Pos()
		c.WriteUint16(0)
		encodeCharString(c, r.HINFO.CPU)
		encodeCharString(c, r.HINFO.OS)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeMINFO:
		pos := c.Pos()
		c.WriteUint16(0)
		r.MINFO.RMailbox.encode(c)
		r.MINFO.EMailbox.encode(c)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeMX:
		pos := c.Pos()
		c.WriteUint16(0)
		c.WriteUint16(r.MX.Priority)
		r.MX.Host.encode(c)
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))

	case QTypeTXT:
		pos := c.Pos()
		c.WriteUint16(0)
		content := []byte(r.TXT.Content)
		for i := 0; i < len(content); i += 255 {
			end := i + 255
			if end > len(content) {
				end = len(content)
			}
			encodeCharString(c, string(content[i:end]))
		}
		c.SetUint16(pos, uint16(c.Pos()-(pos+2)))
	}
}
