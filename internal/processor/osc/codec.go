package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// message is a minimal OSC 1.0 message: an address pattern followed by a
// type tag string ("i"/"f"/"s") and the matching arguments, grounded on
// OSCProtocolProcessor.cpp's use of a third-party OSC codec — reimplemented
// here directly against the wire format since no OSC library appears
// anywhere in the example corpus.
type message struct {
	Address string
	Ints    []int32
	Floats  []float32
	Strings []string
	Tags    string // order of arguments, e.g. "ff"
}

func pad4(n int) int {
	if r := n % 4; r != 0 {
		return n + (4 - r)
	}
	return n
}

func encodeOSCString(s string) []byte {
	b := make([]byte, pad4(len(s)+1))
	copy(b, s)
	return b
}

func decodeOSCString(b []byte) (string, int, error) {
	idx := -1
	for i, c := range b {
		if c == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", 0, fmt.Errorf("osc: unterminated string")
	}
	return string(b[:idx]), pad4(idx + 1), nil
}

// marshal encodes m into an OSC 1.0 binary packet.
func marshal(m message) []byte {
	var buf []byte
	buf = append(buf, encodeOSCString(m.Address)...)
	buf = append(buf, encodeOSCString(","+m.Tags)...)

	fi, ff, fs := 0, 0, 0
	for _, tag := range m.Tags {
		switch tag {
		case 'i':
			var v [4]byte
			binary.BigEndian.PutUint32(v[:], uint32(m.Ints[fi]))
			buf = append(buf, v[:]...)
			fi++
		case 'f':
			var v [4]byte
			binary.BigEndian.PutUint32(v[:], math.Float32bits(m.Floats[ff]))
			buf = append(buf, v[:]...)
			ff++
		case 's':
			buf = append(buf, encodeOSCString(m.Strings[fs])...)
			fs++
		}
	}
	return buf
}

// unmarshal decodes an OSC 1.0 binary packet into a message.
func unmarshal(b []byte) (message, error) {
	addr, n, err := decodeOSCString(b)
	if err != nil {
		return message{}, fmt.Errorf("osc: decode address: %w", err)
	}
	b = b[n:]

	tagStr, n, err := decodeOSCString(b)
	if err != nil {
		return message{}, fmt.Errorf("osc: decode type tags: %w", err)
	}
	b = b[n:]
	tags := strings.TrimPrefix(tagStr, ",")

	m := message{Address: addr, Tags: tags}
	for _, tag := range tags {
		switch tag {
		case 'i':
			if len(b) < 4 {
				return message{}, fmt.Errorf("osc: truncated int32 argument")
			}
			m.Ints = append(m.Ints, int32(binary.BigEndian.Uint32(b[:4])))
			b = b[4:]
		case 'f':
			if len(b) < 4 {
				return message{}, fmt.Errorf("osc: truncated float32 argument")
			}
			m.Floats = append(m.Floats, math.Float32frombits(binary.BigEndian.Uint32(b[:4])))
			b = b[4:]
		case 's':
			s, n, err := decodeOSCString(b)
			if err != nil {
				return message{}, fmt.Errorf("osc: decode string argument: %w", err)
			}
			m.Strings = append(m.Strings, s)
			b = b[n:]
		default:
			return message{}, fmt.Errorf("osc: unsupported type tag %q", tag)
		}
	}
	return m, nil
}
