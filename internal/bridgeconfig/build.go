package bridgeconfig

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/bridgenode"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/engine"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/aura"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/midi"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/noproto"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/ocp1"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/osc"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor/rttrpm"
)

// Options configures Build. Logger defaults to slog.Default(). OpenMIDIPort
// is required only when the tree configures a MIDI protocol: no MIDI
// transport library appears anywhere in the example corpus (see
// internal/processor/midi.Port's doc comment), so opening a real device is
// left to the caller.
type Options struct {
	Logger       *slog.Logger
	OpenMIDIPort func(deviceIdentifier string) (midi.Port, error)
}

// Build is the Go analogue of the teacher's config.Load(): it turns a
// parsed configuration Document into a running engine.Engine, the way
// spec.md §4.7 asks of the configuration-ingress collaborator
// ("Build(tree) (*engine.Engine, error)").
func Build(doc *Document, opts Options) (*engine.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger

	eng := engine.New(logger)
	seenNodes := make(map[objectmodel.NodeID]struct{}, len(doc.Nodes))

	for _, nx := range doc.Nodes {
		id := objectmodel.NodeID(nx.ID)
		if _, dup := seenNodes[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNodeID, id)
		}
		seenNodes[id] = struct{}{}

		cfg, err := toNodeConfig(id, nx, opts)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}

		n := bridgenode.New(id, logger)
		if err := n.SetState(cfg); err != nil {
			return nil, fmt.Errorf("node %d: configuring: %w", id, err)
		}
		if err := eng.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
	}
	return eng, nil
}

func toNodeConfig(id objectmodel.NodeID, nx NodeXML, opts Options) (bridgenode.Config, error) {
	mode := handler.ParseMode(nx.ObjectHandling.Mode)
	if mode == handler.ModeInvalid {
		return bridgenode.Config{}, fmt.Errorf("%w: %q", ErrUnknownMode, nx.ObjectHandling.Mode)
	}

	aIDs := make([]objectmodel.ProtocolID, 0, len(nx.ProtocolA))
	for _, p := range nx.ProtocolA {
		aIDs = append(aIDs, objectmodel.ProtocolID(p.ID))
	}
	bIDs := make([]objectmodel.ProtocolID, 0, len(nx.ProtocolB))
	for _, p := range nx.ProtocolB {
		bIDs = append(bIDs, objectmodel.ProtocolID(p.ID))
	}

	hCfg := handler.Config{
		Mode:                  mode,
		ProtocolAIDs:          aIDs,
		ProtocolBIDs:          bIDs,
		ProtocolAChannelCount: nx.ObjectHandling.ProtocolAChCnt,
		ProtocolBChannelCount: nx.ObjectHandling.ProtocolBChCnt,
		DataPrecision:         nx.ObjectHandling.DataPrecision,
	}
	if nx.ObjectHandling.FailoverTimeMs > 0 {
		hCfg.FailoverTime = time.Duration(nx.ObjectHandling.FailoverTimeMs) * time.Millisecond
	}
	if nx.ObjectHandling.ReactionTimeoutMs > 0 {
		hCfg.ReactionTimeout = time.Duration(nx.ObjectHandling.ReactionTimeoutMs) * time.Millisecond
	}

	aSpecs, err := toProtocolSpecs(nx.ProtocolA, processor.RoleA, opts)
	if err != nil {
		return bridgenode.Config{}, err
	}
	bSpecs, err := toProtocolSpecs(nx.ProtocolB, processor.RoleB, opts)
	if err != nil {
		return bridgenode.Config{}, err
	}

	return bridgenode.Config{ID: id, Handler: hCfg, ProtocolA: aSpecs, ProtocolB: bSpecs}, nil
}

func toProtocolSpecs(xs []ProtocolXML, role processor.Role, opts Options) ([]bridgenode.ProtocolSpec, error) {
	seen := make(map[objectmodel.ProtocolID]struct{}, len(xs))
	specs := make([]bridgenode.ProtocolSpec, 0, len(xs))

	for _, px := range xs {
		cfg, err := toProcessorConfig(px, role)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProtocolID, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}

		factory := protocolFactory(cfg.Type, opts)
		if factory == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProtocolType, px.Type)
		}
		specs = append(specs, bridgenode.ProtocolSpec{State: cfg, New: factory})
	}
	return specs, nil
}

// protocolFactory returns the constructor bridgenode uses to build a fresh
// processor.Processor of typ, or nil if typ is unrecognized.
func protocolFactory(typ processor.Type, opts Options) func(cfg processor.Config) (processor.Processor, error) {
	logger := opts.Logger

	switch typ {
	case processor.TypeOSC:
		return func(cfg processor.Config) (processor.Processor, error) {
			return osc.New(cfg.ID, cfg.Role, osc.DialectDS100, logger), nil
		}
	case processor.TypeYamahaOSC:
		return func(cfg processor.Config) (processor.Processor, error) {
			return osc.NewYamaha(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeADMOSC:
		return func(cfg processor.Config) (processor.Processor, error) {
			return osc.NewADM(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeRemapOSC:
		return func(cfg processor.Config) (processor.Processor, error) {
			return osc.NewRemap(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeOCP1:
		return func(cfg processor.Config) (processor.Processor, error) {
			return ocp1.New(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeMIDI:
		return func(cfg processor.Config) (processor.Processor, error) {
			if opts.OpenMIDIPort == nil {
				return nil, ErrMIDIPortOpenerMissing
			}
			port, err := opts.OpenMIDIPort(cfg.MIDIInputDevice)
			if err != nil {
				return nil, fmt.Errorf("opening midi port %q: %w", cfg.MIDIInputDevice, err)
			}
			return midi.New(cfg.ID, cfg.Role, port, logger), nil
		}
	case processor.TypeRTTrPM:
		return func(cfg processor.Config) (processor.Processor, error) {
			return rttrpm.New(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeAURA:
		return func(cfg processor.Config) (processor.Processor, error) {
			return aura.New(cfg.ID, cfg.Role, logger), nil
		}
	case processor.TypeNoProtocol:
		return func(cfg processor.Config) (processor.Processor, error) {
			return noproto.New(cfg.ID, cfg.Role, logger), nil
		}
	default:
		return nil
	}
}
