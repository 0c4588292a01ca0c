package osc

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestSendReceiveRoundTrip(t *testing.T) {
	hostPort := freeUDPPort(t)
	clientPort := freeUDPPort(t)

	receiver := New(1, processor.RoleA, DialectDS100, nil)
	if err := receiver.SetState(processor.Config{IPAddress: "127.0.0.1", ClientPort: clientPort, HostPort: hostPort}); err != nil {
		t.Fatalf("receiver SetState: %v", err)
	}
	if err := receiver.Start(); err != nil {
		t.Fatalf("receiver Start: %v", err)
	}
	defer receiver.Stop()

	sender := New(2, processor.RoleB, DialectDS100, nil)
	if err := sender.SetState(processor.Config{IPAddress: "127.0.0.1", ClientPort: hostPort, HostPort: clientPort}); err != nil {
		t.Fatalf("sender SetState: %v", err)
	}
	if err := sender.Start(); err != nil {
		t.Fatalf("sender Start: %v", err)
	}
	defer sender.Stop()

	var mu sync.Mutex
	var gotRO objectmodel.RemoteObject
	var gotVal float32
	done := make(chan struct{})

	receiver.AddListener(processor.ListenerFunc(func(p processor.Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
		mu.Lock()
		defer mu.Unlock()
		gotRO = ro
		if vs, ok := data.Floats(); ok && len(vs) == 1 {
			gotVal = vs[0]
		}
		close(done)
	}))

	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(3, -1))
	if err := sender.SendRemoteObjectMessage(ro, objectmodel.NewFloat(ro.Addr, -6.5), -1); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotRO.ID != roi.MatrixInputGain || gotRO.Addr.First != 3 {
		t.Fatalf("got RemoteObject %v, want MatrixInputGain(3,-1)", gotRO)
	}
	if gotVal != -6.5 {
		t.Fatalf("got value %v, want -6.5", gotVal)
	}
}

func TestAddressForRemapDialect(t *testing.T) {
	p := New(1, processor.RoleA, DialectRemap, nil)
	_ = p.SetState(processor.Config{
		Remappings: []processor.RemapEntry{
			{ROI: roi.MatrixInputGain, Pattern: "/custom/gain"},
		},
	})
	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(1, -1))
	if got := p.addressFor(ro); got != "/custom/gain" {
		t.Fatalf("addressFor = %q, want /custom/gain", got)
	}
}

func TestADMAppendSegments(t *testing.T) {
	p := New(1, processor.RoleA, DialectADM, nil)
	ro := objectmodel.New(roi.CoordinateMappingSourcePositionX, objectmodel.NewAddressing(7, -1))
	base := p.addressFor(ro)
	got := p.appendSegments(base, ro)
	want := "/adm/obj/" + strconv.Itoa(7) + "/x"
	if got != want {
		t.Fatalf("appendSegments = %q, want %q", got, want)
	}
}

func TestSendingDisabledSuppressesOutput(t *testing.T) {
	hostPort := freeUDPPort(t)
	p := New(1, processor.RoleA, DialectDS100, nil)
	_ = p.SetState(processor.Config{IPAddress: "127.0.0.1", ClientPort: hostPort, HostPort: freeUDPPort(t), DataSendingDisabled: true})
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(1, -1))
	if err := p.SendRemoteObjectMessage(ro, objectmodel.NewFloat(ro.Addr, 1), -1); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}
}
