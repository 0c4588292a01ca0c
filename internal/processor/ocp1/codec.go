package ocp1

import (
	"encoding/binary"
	"fmt"
	"math"
)

// messageKind distinguishes command/response/notification frames, per the
// AES70/OCP.1 PDU type byte.
type messageKind uint8

const (
	kindCommand messageKind = iota
	kindResponse
	kindNotification
	kindKeepAlive
)

// frame is this bridge's AES70-derived wire frame: a length-prefixed TCP
// frame carrying a handle (for request/response correlation), a target
// ONo, and 0-3 float32 parameters. NanoOcp1's full BER-encoded command set
// is not reimplemented; this framing captures the subset of AES70 behavior
// the bridge depends on (handle correlation, keep-alive, get/set/
// subscribe/notify), matching the scope spec.md §4.2.3 actually describes.
type frame struct {
	Kind    messageKind
	Handle  uint32
	ONo     ONo
	Method  uint8 // 0=Get/Notify, 1=Set, 2=Subscribe, 3=Unsubscribe, 4=SceneApply, 5=SceneNext, 6=ScenePrevious
	Values  []float32
}

const headerSize = 1 + 4 + 4 + 1 + 1 // kind, handle, ono, method, valcount

func marshalFrame(f frame) []byte {
	body := make([]byte, headerSize+4*len(f.Values))
	body[0] = byte(f.Kind)
	binary.BigEndian.PutUint32(body[1:5], f.Handle)
	binary.BigEndian.PutUint32(body[5:9], uint32(f.ONo))
	body[9] = f.Method
	body[10] = byte(len(f.Values))
	for i, v := range f.Values {
		binary.BigEndian.PutUint32(body[headerSize+i*4:], math.Float32bits(v))
	}

	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

func unmarshalFrame(body []byte) (frame, error) {
	if len(body) < headerSize {
		return frame{}, fmt.Errorf("ocp1: truncated frame header")
	}
	f := frame{
		Kind:   messageKind(body[0]),
		Handle: binary.BigEndian.Uint32(body[1:5]),
		ONo:    ONo(binary.BigEndian.Uint32(body[5:9])),
		Method: body[9],
	}
	n := int(body[10])
	if len(body) != headerSize+4*n {
		return frame{}, fmt.Errorf("ocp1: value count mismatch")
	}
	f.Values = make([]float32, n)
	for i := range f.Values {
		f.Values[i] = math.Float32frombits(binary.BigEndian.Uint32(body[headerSize+i*4:]))
	}
	return f, nil
}
