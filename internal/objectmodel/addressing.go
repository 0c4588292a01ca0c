// Package objectmodel implements the RemoteObjectAddressing, RemoteObject,
// MessageData and MetaInfo types shared by every protocol processor and
// object-data-handler (spec.md §3).
package objectmodel

import (
	"fmt"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// InvalidAddressValue marks "not applicable" for either addressing
// component, matching the original's INVALID_ADDRESS_VALUE.
const InvalidAddressValue = -1

// Addressing is the (channel/source, record/mapping-area) pair that
// disambiguates which instance of a RemoteObjectIdentifier is meant.
// Whether First/Second are meaningful for a given id is a static property
// of the id, see roi.IsChannelAddressingObject / IsRecordAddressingObject.
type Addressing struct {
	First  int // channel / source index, 1-based, or InvalidAddressValue
	Second int // record / mapping-area index, 1-based, or InvalidAddressValue
}

// NewAddressing builds an Addressing from first and second as given; it
// does not replace unused components with InvalidAddressValue.
func NewAddressing(first, second int) Addressing {
	return Addressing{First: first, Second: second}
}

// Invalid is the zero-ish addressing value meaning "not applicable".
var Invalid = Addressing{First: InvalidAddressValue, Second: InvalidAddressValue}

// Less gives Addressing a total lexicographic order, used to keep
// RemoteObject a valid map/sort key.
func (a Addressing) Less(b Addressing) bool {
	if a.First != b.First {
		return a.First < b.First
	}
	return a.Second < b.Second
}

func (a Addressing) String() string {
	return fmt.Sprintf("%d,%d", a.First, a.Second)
}

// RemoteObject identifies one bridgeable parameter instance: an id plus its
// addressing. It is comparable and usable as a map key.
type RemoteObject struct {
	ID   roi.ID
	Addr Addressing
}

// New builds a RemoteObject.
func New(id roi.ID, addr Addressing) RemoteObject {
	return RemoteObject{ID: id, Addr: addr}
}

// Less gives RemoteObject the total lexicographic order spec.md §3 requires.
func (r RemoteObject) Less(o RemoteObject) bool {
	if r.ID != o.ID {
		return r.ID < o.ID
	}
	return r.Addr.Less(o.Addr)
}

func (r RemoteObject) String() string {
	return fmt.Sprintf("%s(%s)", r.ID, r.Addr)
}
