package bridgeconfig

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/osc"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// freeUDPPort reserves an ephemeral UDP port and releases it immediately,
// the same helper internal/processor/osc's own tests use to pick ports that
// are free at the instant of the call.
func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

// TestEndToEndBypassUDPRoundTrip exercises a Bypass node built by Build from
// a real configuration document end to end over real UDP sockets: a message
// sent by a simulated external OSC peer into ProtocolA's host port arrives,
// unchanged, at a simulated external OSC peer listening on ProtocolB's
// client port.
func TestEndToEndBypassUDPRoundTrip(t *testing.T) {
	aHost := freeUDPPort(t)
	aClient := freeUDPPort(t)
	bHost := freeUDPPort(t)
	bClient := freeUDPPort(t)

	xmlDoc := fmt.Sprintf(`
<RemoteProtocolBridge>
  <Node Id="1">
    <ObjectHandling Mode="Bypass"/>
    <ProtocolA Id="1" Type="OSC">
      <IpAddress Address="127.0.0.1"/>
      <ClientPort Port="%d"/>
      <HostPort Port="%d"/>
    </ProtocolA>
    <ProtocolB Id="2" Type="OSC">
      <IpAddress Address="127.0.0.1"/>
      <ClientPort Port="%d"/>
      <HostPort Port="%d"/>
    </ProtocolB>
  </Node>
</RemoteProtocolBridge>`, aClient, aHost, bClient, bHost)

	doc := mustParse(t, xmlDoc)

	eng, err := Build(doc, Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("eng.Start: %v", err)
	}
	defer eng.Stop()

	// extPeerA simulates the external device talking to ProtocolA: it sends
	// into ProtocolA's HostPort and never needs to receive anything back.
	extPeerA := osc.New(100, processor.RoleA, osc.DialectDS100, nil)
	if err := extPeerA.SetState(processor.Config{IPAddress: "127.0.0.1", ClientPort: aHost, HostPort: freeUDPPort(t)}); err != nil {
		t.Fatalf("extPeerA SetState: %v", err)
	}
	if err := extPeerA.Start(); err != nil {
		t.Fatalf("extPeerA Start: %v", err)
	}
	defer extPeerA.Stop()

	// extPeerB simulates the external device talking to ProtocolB: it
	// listens on ProtocolB's ClientPort for whatever the node bridges out.
	extPeerB := osc.New(200, processor.RoleB, osc.DialectDS100, nil)
	if err := extPeerB.SetState(processor.Config{IPAddress: "127.0.0.1", ClientPort: freeUDPPort(t), HostPort: bClient}); err != nil {
		t.Fatalf("extPeerB SetState: %v", err)
	}
	if err := extPeerB.Start(); err != nil {
		t.Fatalf("extPeerB Start: %v", err)
	}
	defer extPeerB.Stop()

	var mu sync.Mutex
	var gotVal float32
	done := make(chan struct{})
	extPeerB.AddListener(processor.ListenerFunc(func(_ processor.Processor, _ objectmodel.RemoteObject, data objectmodel.MessageData, _ objectmodel.MetaInfo) {
		mu.Lock()
		defer mu.Unlock()
		if vs, ok := data.Floats(); ok && len(vs) == 1 {
			gotVal = vs[0]
		}
		select {
		case <-done:
		default:
			close(done)
		}
	}))

	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(3, -1))
	if err := extPeerA.SendRemoteObjectMessage(ro, objectmodel.NewFloat(ro.Addr, -4.5), -1); err != nil {
		t.Fatalf("extPeerA SendRemoteObjectMessage: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridged message to reach ProtocolB's external peer")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotVal != -4.5 {
		t.Fatalf("got bridged value %v, want -4.5", gotVal)
	}
}
