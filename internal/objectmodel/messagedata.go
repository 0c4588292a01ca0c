package objectmodel

import (
	"encoding/binary"
	"math"
)

// ValueType is the payload's element type (spec.md §3).
type ValueType int

const (
	ValueNone ValueType = iota
	ValueInt
	ValueFloat
	ValueString
)

func (t ValueType) String() string {
	switch t {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	default:
		return "none"
	}
}

// sizeOf is the per-element byte width for numeric types; 1 for string
// (valueCount counts bytes there, per spec.md §3 invariant).
func sizeOf(t ValueType) int {
	switch t {
	case ValueInt, ValueFloat:
		return 4
	case ValueString:
		return 1
	default:
		return 0
	}
}

// MessageData is the generic, protocol-agnostic remote-object payload
// envelope (spec.md §3 RemoteObjectMessageData). Payload is a flat byte
// buffer; Owned records whether this value holds a private copy (the Go
// analogue of the original's payloadOwned bool + payloadCopy method) or
// merely aliases a buffer handed in by the caller (a borrow).
type MessageData struct {
	Addr    Addressing
	ValType ValueType
	ValCount int
	Payload []byte
	Owned   bool
}

// Empty returns a None-typed, payload-less MessageData at addr — used for
// value-query ("get") requests and as the cache's not-yet-observed
// placeholder.
func Empty(addr Addressing) MessageData {
	return MessageData{Addr: addr, ValType: ValueNone}
}

// IsDataEmpty reports whether d carries no payload (spec.md
// RemoteObjectMessageData::isDataEmpty).
func (d MessageData) IsDataEmpty() bool {
	return len(d.Payload) == 0 && d.ValCount == 0
}

// Borrow returns a shallow copy that aliases d's buffer (Owned=false) — the
// Go analogue of the original's plain assignment operator. Safe only for
// synchronous, same-goroutine re-emission (spec.md §3 Lifecycle).
func (d MessageData) Borrow() MessageData {
	cp := d
	cp.Owned = false
	return cp
}

// Clone deep-copies the payload buffer and marks the result Owned — the Go
// analogue of the original's payloadCopy. Required before a MessageData
// crosses a goroutine boundary (e.g. into a bridgenode queue entry).
func (d MessageData) Clone() MessageData {
	cp := d
	if len(d.Payload) > 0 {
		cp.Payload = make([]byte, len(d.Payload))
		copy(cp.Payload, d.Payload)
	} else {
		cp.Payload = nil
	}
	cp.Owned = true
	return cp
}

// NewInt builds an owned int32-valued MessageData.
func NewInt(addr Addressing, values ...int32) MessageData {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return MessageData{Addr: addr, ValType: ValueInt, ValCount: len(values), Payload: buf, Owned: true}
}

// NewFloat builds an owned float32-valued MessageData.
func NewFloat(addr Addressing, values ...float32) MessageData {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return MessageData{Addr: addr, ValType: ValueFloat, ValCount: len(values), Payload: buf, Owned: true}
}

// NewString builds an owned string-valued MessageData.
func NewString(addr Addressing, value string) MessageData {
	return MessageData{Addr: addr, ValType: ValueString, ValCount: len(value), Payload: []byte(value), Owned: true}
}

// Ints decodes the payload as int32 values. ok is false on a type or arity
// mismatch.
func (d MessageData) Ints() (values []int32, ok bool) {
	if d.ValType != ValueInt || len(d.Payload) != d.ValCount*4 {
		return nil, false
	}
	values = make([]int32, d.ValCount)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(d.Payload[i*4:]))
	}
	return values, true
}

// Floats decodes the payload as float32 values. ok is false on a type or
// arity mismatch.
func (d MessageData) Floats() (values []float32, ok bool) {
	if d.ValType != ValueFloat || len(d.Payload) != d.ValCount*4 {
		return nil, false
	}
	values = make([]float32, d.ValCount)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(d.Payload[i*4:]))
	}
	return values, true
}

// String decodes the payload as a string. ok is false if ValType isn't
// ValueString.
func (d MessageData) String() (value string, ok bool) {
	if d.ValType != ValueString {
		return "", false
	}
	return string(d.Payload), true
}

// Equal reports bitwise-equal payload, type, count and addressing — used by
// the value-change filter (spec.md §4.3 "Forward-only value-changes") for
// int/string comparison, and by cache-coherence tests (spec.md §8 P1).
func (d MessageData) Equal(o MessageData) bool {
	if d.Addr != o.Addr || d.ValType != o.ValType || d.ValCount != o.ValCount {
		return false
	}
	if len(d.Payload) != len(o.Payload) {
		return false
	}
	for i := range d.Payload {
		if d.Payload[i] != o.Payload[i] {
			return false
		}
	}
	return true
}
