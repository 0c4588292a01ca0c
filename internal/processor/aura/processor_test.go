package aura

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func listenOnce(t *testing.T) (net.Listener, chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	lines := make(chan string, 8)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return ln, lines
}

func TestRelativeToAbsolute(t *testing.T) {
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	p.SetArea(Area{Width: 10, Height: 4})
	x, y := p.relativeToAbsolute(0.5, 0.25)
	if x != 5 || y != 1 {
		t.Fatalf("got (%v,%v), want (5,1)", x, y)
	}
}

func TestStartSendsListenerPosition(t *testing.T) {
	ln, lines := listenOnce(t)
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	p.SetListenerPosition(ListenerPosition{X: 1, Y: 2, Z: 3})
	if err := p.SetState(processor.Config{IPAddress: addr.IP.String(), ClientPort: addr.Port}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	select {
	case line := <-lines:
		if line[:12] != "LISTENERPOS " {
			t.Fatalf("got %q, want LISTENERPOS prefix", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for listener position line")
	}
}

func TestSendRemoteObjectMessagePositionXY(t *testing.T) {
	ln, lines := listenOnce(t)
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	p.SetArea(Area{Width: 8, Height: 2})
	if err := p.SetState(processor.Config{IPAddress: addr.IP.String(), ClientPort: addr.Port}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()
	<-lines // discard LISTENERPOS

	ro := objectmodel.New(roi.CoordinateMappingSourcePositionXY, objectmodel.NewAddressing(3, objectmodel.InvalidAddressValue))
	data := objectmodel.NewFloat(ro.Addr, 0.5, 0.5)
	if err := p.SendRemoteObjectMessage(ro, data, 0); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}

	select {
	case line := <-lines:
		want := "SOURCEPOS 3 4.000000 1.000000 0.0"
		if line != want {
			t.Fatalf("got %q, want %q", line, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for source position line")
	}
}

func TestSendRemoteObjectMessageIgnoresUnrelatedROI(t *testing.T) {
	ln, lines := listenOnce(t)
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	if err := p.SetState(processor.Config{IPAddress: addr.IP.String(), ClientPort: addr.Port}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()
	<-lines // discard LISTENERPOS

	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(1, objectmodel.InvalidAddressValue))
	if err := p.SendRemoteObjectMessage(ro, objectmodel.NewFloat(ro.Addr, 0), 0); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}

	select {
	case line := <-lines:
		t.Fatalf("expected no line for unrelated ROI, got %q", line)
	case <-time.After(200 * time.Millisecond):
	}
}
