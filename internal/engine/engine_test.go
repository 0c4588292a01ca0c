package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/bridgenode"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func emptyNode(id objectmodel.NodeID) *bridgenode.Node {
	n := bridgenode.New(id, testLogger())
	n.SetState(bridgenode.Config{ID: id, Handler: handler.Config{Mode: handler.ModeBypass}})
	return n
}

func TestAddNodeRejectsDuplicateID(t *testing.T) {
	e := New(testLogger())
	if err := e.AddNode(emptyNode(1)); err != nil {
		t.Fatalf("first AddNode: %v", err)
	}
	err := e.AddNode(emptyNode(1))
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Fatalf("expected ErrDuplicateNodeID, got %v", err)
	}
}

func TestRemoveNodeUnknownID(t *testing.T) {
	e := New(testLogger())
	if err := e.RemoveNode(42); !errors.Is(err, ErrUnknownNodeID) {
		t.Fatalf("expected ErrUnknownNodeID, got %v", err)
	}
}

func TestStartStartsAllRegisteredNodes(t *testing.T) {
	e := New(testLogger())
	for _, id := range []objectmodel.NodeID{1, 2, 3} {
		if err := e.AddNode(emptyNode(id)); err != nil {
			t.Fatalf("AddNode(%d): %v", id, err)
		}
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	ids := e.NodeIDs()
	if len(ids) != 3 {
		t.Fatalf("expected 3 node ids, got %d", len(ids))
	}
}

func TestAddNodeStartsImmediatelyWhenEngineAlreadyRunning(t *testing.T) {
	e := New(testLogger())
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Stop()

	if err := e.AddNode(emptyNode(7)); err != nil {
		t.Fatalf("AddNode after Start: %v", err)
	}
	if _, ok := e.Node(7); !ok {
		t.Fatal("expected node 7 to be registered")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	e := New(testLogger())
	if err := e.AddNode(emptyNode(1)); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
