package valuecache

import (
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// TestCacheCoherence is spec.md §8 P1: same payload size updates in place,
// changed size reallocates, and reads always observe the latest set.
func TestCacheCoherence(t *testing.T) {
	c := New()
	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(3, -1))

	c.Set(ro, objectmodel.NewFloat(objectmodel.NewAddressing(3, -1), -6.0))
	if got := c.GetFloat(ro); got != -6.0 {
		t.Fatalf("GetFloat = %v, want -6.0", got)
	}

	c.Set(ro, objectmodel.NewFloat(objectmodel.NewAddressing(3, -1), 3.0))
	if got := c.GetFloat(ro); got != 3.0 {
		t.Fatalf("GetFloat after update = %v, want 3.0", got)
	}

	// Changed arity (size) must not leave stale data visible.
	c.Set(ro, objectmodel.NewFloat(objectmodel.NewAddressing(3, -1), 1.0, 2.0))
	f1, f2 := c.GetDualFloat(ro)
	if f1 != 1.0 || f2 != 2.0 {
		t.Fatalf("GetDualFloat = (%v,%v), want (1,2)", f1, f2)
	}
}

func TestCacheGetInsertsPlaceholder(t *testing.T) {
	c := New()
	ro := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(1, -1))

	if c.Contains(ro) {
		t.Fatal("fresh cache should not contain ro")
	}
	d := c.Get(ro)
	if d.ValType != objectmodel.ValueNone {
		t.Fatalf("placeholder ValType = %v, want None", d.ValType)
	}
	if !c.Contains(ro) {
		t.Fatal("Get should have inserted a placeholder")
	}
}

func TestCacheClear(t *testing.T) {
	c := New()
	ro := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(1, -1))
	c.Set(ro, objectmodel.NewInt(objectmodel.NewAddressing(1, -1), 1))
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestOwnedCloneIndependence(t *testing.T) {
	addr := objectmodel.NewAddressing(1, -1)
	original := objectmodel.NewInt(addr, 42)
	clone := original.Clone()
	clone.Payload[0] = 0xFF
	if original.Payload[0] == 0xFF {
		t.Fatal("mutating clone payload must not affect original (owned copy)")
	}
}
