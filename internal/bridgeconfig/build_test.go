package bridgeconfig

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	var doc Document
	if err := xml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("xml.Unmarshal: %v", err)
	}
	return &doc
}

const bypassXML = `
<RemoteProtocolBridge>
  <Node Id="1">
    <ObjectHandling Mode="Bypass"/>
    <ProtocolA Id="1" Type="OSC" UsesActiveRemoteObjects="1">
      <IpAddress Address="127.0.0.1"/>
      <ClientPort Port="50010"/>
      <HostPort Port="50011"/>
      <ActiveObjects>
        <MatrixInput_Mute channels="1,2,3"/>
      </ActiveObjects>
    </ProtocolA>
    <ProtocolB Id="2" Type="OSC">
      <IpAddress Address="127.0.0.1"/>
      <ClientPort Port="50012"/>
      <HostPort Port="50013"/>
    </ProtocolB>
  </Node>
</RemoteProtocolBridge>
`

func TestBuildConstructsBypassNode(t *testing.T) {
	doc := mustParse(t, bypassXML)

	eng, err := Build(doc, Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	n, ok := eng.Node(1)
	if !ok {
		t.Fatal("expected node 1 to be registered")
	}
	if n.ID() != 1 {
		t.Fatalf("got node id %d, want 1", n.ID())
	}
}

func TestBuildRejectsUnknownMode(t *testing.T) {
	doc := mustParse(t, `<RemoteProtocolBridge><Node Id="1"><ObjectHandling Mode="NotAMode"/></Node></RemoteProtocolBridge>`)

	_, err := Build(doc, Options{Logger: testLogger()})
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestBuildRejectsUnknownProtocolType(t *testing.T) {
	doc := mustParse(t, `<RemoteProtocolBridge><Node Id="1"><ObjectHandling Mode="Bypass"/><ProtocolA Id="1" Type="Telepathy"/></Node></RemoteProtocolBridge>`)

	_, err := Build(doc, Options{Logger: testLogger()})
	if !errors.Is(err, ErrUnknownProtocolType) {
		t.Fatalf("expected ErrUnknownProtocolType, got %v", err)
	}
}

func TestBuildRejectsDuplicateNodeID(t *testing.T) {
	doc := mustParse(t, `<RemoteProtocolBridge>
		<Node Id="1"><ObjectHandling Mode="Bypass"/></Node>
		<Node Id="1"><ObjectHandling Mode="Bypass"/></Node>
	</RemoteProtocolBridge>`)

	_, err := Build(doc, Options{Logger: testLogger()})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Fatalf("expected ErrDuplicateNodeID, got %v", err)
	}
}

func TestBuildRejectsDuplicateProtocolIDWithinRole(t *testing.T) {
	doc := mustParse(t, `<RemoteProtocolBridge><Node Id="1">
		<ObjectHandling Mode="Bypass"/>
		<ProtocolA Id="1" Type="OSC"/>
		<ProtocolA Id="1" Type="OSC"/>
	</Node></RemoteProtocolBridge>`)

	_, err := Build(doc, Options{Logger: testLogger()})
	if !errors.Is(err, ErrDuplicateProtocolID) {
		t.Fatalf("expected ErrDuplicateProtocolID, got %v", err)
	}
}

func TestBuildFailsMIDIWithoutPortOpener(t *testing.T) {
	doc := mustParse(t, `<RemoteProtocolBridge><Node Id="1">
		<ObjectHandling Mode="Bypass"/>
		<ProtocolA Id="1" Type="MIDI">
			<InputDevice DeviceIdentifier="loop-in"/>
			<OutputDevice DeviceIdentifier="loop-out"/>
		</ProtocolA>
	</Node></RemoteProtocolBridge>`)

	_, err := Build(doc, Options{Logger: testLogger()})
	if !errors.Is(err, ErrMIDIPortOpenerMissing) {
		t.Fatalf("expected ErrMIDIPortOpenerMissing, got %v", err)
	}
}

func TestExpandObjectListDefaultsMissingRecordsToInvalid(t *testing.T) {
	list := ObjectListXML{Entries: []ObjectEntryXML{
		{XMLName: xmlName("MatrixInput_Mute"), Channels: "3"},
	}}
	objects, err := expandObjectList(list)
	if err != nil {
		t.Fatalf("expandObjectList: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("expected one object, got %d", len(objects))
	}
	if objects[0].Addr.First != 3 || objects[0].Addr.Second != objectmodel.InvalidAddressValue {
		t.Fatalf("got addr %+v, want first=3 second=invalid", objects[0].Addr)
	}
}

func xmlName(local string) xml.Name {
	return xml.Name{Local: local}
}
