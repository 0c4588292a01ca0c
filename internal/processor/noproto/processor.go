package noproto

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/timerthread"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/valuecache"
)

// callbackIntervalMs is the simulator's fixed tick rate
// (NoProtocolProtocolProcessor::m_callbackRate).
const callbackIntervalMs = 100

// Processor is the No-protocol simulator: it never touches the network, and
// instead answers from (and optionally animates) an internal value cache
// seeded with plausible defaults or a loaded .dbpr project (spec.md
// §4.2.6).
type Processor struct {
	processor.Base

	log *slog.Logger

	mu       sync.Mutex
	cache    *valuecache.Cache
	animator *animator
	timer    timerthread.Timer
}

// New constructs a No-protocol Processor. Its value cache is seeded
// immediately so reads work even before Start.
func New(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	p := &Processor{log: log, cache: valuecache.New(), animator: newAnimator(AnimationOff)}
	p.Base.Init(id, role, processor.TypeNoProtocol)
	seedDefaults(p.cache)
	return p
}

// SetState configures the animation mode and, if a project file path is
// given, re-seeds the cache from it (spec.md §4.2.6; setStateXml's
// DBPRDATA/MODE attributes).
func (p *Processor) SetState(cfg processor.Config) error {
	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)

	mode := AnimationOff
	if cfg.SimulateCircular {
		mode = AnimationCircle
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.animator = newAnimator(mode)

	if cfg.ProjectFilePath != "" {
		pd, err := OpenAndReadProject(cfg.ProjectFilePath)
		if err != nil {
			return fmt.Errorf("noproto: %w", err)
		}
		if !pd.IsEmpty() {
			seedFromProject(p.cache, pd)
		}
	}
	return nil
}

// Start begins the simulator's tick loop: every callbackIntervalMs it emits
// a heartbeat pong every 40th tick and, if animation is enabled, steps every
// animated cached value (NoProtocolProtocolProcessor::Start/timerThreadCallback).
func (p *Processor) Start() error {
	p.cacheFanOut()
	p.timer.Start(callbackIntervalMs, callbackIntervalMs, p.tick)
	return nil
}

// Stop halts the tick loop.
func (p *Processor) Stop() error {
	p.timer.Stop()
	return nil
}

func (p *Processor) tick() {
	p.mu.Lock()
	a := p.animator
	p.mu.Unlock()

	a.bumpTick()
	if a.isHeartbeatTick() {
		p.Base.NotifyListeners(p, objectmodel.New(roi.HeartbeatPong, objectmodel.Invalid), objectmodel.Empty(objectmodel.Invalid), objectmodel.NoMeta)
	}
	if a.mode != AnimationOff {
		p.stepAnimation(a)
	}
}

// cacheFanOut emits every currently-active cached value once, as the real
// protocol processors do on connect (NoProtocolProtocolProcessor::
// TriggerSendingObjectValueCache).
func (p *Processor) cacheFanOut() {
	active := make(map[objectmodel.RemoteObject]struct{})
	for _, ro := range p.Base.ActiveObjects() {
		active[ro] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Each(func(ro objectmodel.RemoteObject, data objectmodel.MessageData) {
		if _, ok := active[ro]; !ok {
			return
		}
		p.Base.NotifyListeners(p, ro, data.Borrow(), objectmodel.MetaInfo{Category: objectmodel.CategoryUnsolicited, ExternalID: objectmodel.InvalidExternalID})
	})
}

// stepAnimation advances every animated cached value by one tick and
// re-emits it, plus the X/Y/XY decomposition for coordinate-mapped position
// objects (NoProtocolProtocolProcessor::StepAnimation).
func (p *Processor) stepAnimation(a *animator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	type update struct {
		ro   objectmodel.RemoteObject
		data objectmodel.MessageData
	}
	var updates []update

	p.cache.Each(func(ro objectmodel.RemoteObject, data objectmodel.MessageData) {
		if !isAnimatedObject(ro.ID) {
			return
		}
		switch data.ValType {
		case objectmodel.ValueFloat:
			vs, ok := data.Floats()
			if !ok {
				return
			}
			for i := range vs {
				vs[i] = a.stepFloat(vs[i], ro.ID, ro.Addr.First, i)
			}
			updates = append(updates, update{ro, objectmodel.NewFloat(ro.Addr, vs...)})
		case objectmodel.ValueInt:
			vs, ok := data.Ints()
			if !ok {
				return
			}
			for i := range vs {
				vs[i] = a.stepInt(vs[i], ro.ID, ro.Addr.First, i)
			}
			updates = append(updates, update{ro, objectmodel.NewInt(ro.Addr, vs...)})
		}
	})

	for _, u := range updates {
		p.cache.Set(u.ro, u.data)
		p.emitAnimationStep(u.ro, u.data)
	}
}

func (p *Processor) emitAnimationStep(ro objectmodel.RemoteObject, data objectmodel.MessageData) {
	meta := objectmodel.MetaInfo{Category: objectmodel.CategorySetAcknowledgement, ExternalID: objectmodel.InvalidExternalID}
	if !p.isActive(ro) {
		return
	}
	p.Base.NotifyListeners(p, ro, data.Borrow(), meta)

	if ro.ID != roi.CoordinateMappingSourcePosition {
		return
	}
	vs, ok := data.Floats()
	if !ok || len(vs) != 3 {
		return
	}
	for _, derived := range []struct {
		id roi.ID
		d  objectmodel.MessageData
	}{
		{roi.CoordinateMappingSourcePositionX, objectmodel.NewFloat(ro.Addr, vs[0])},
		{roi.CoordinateMappingSourcePositionY, objectmodel.NewFloat(ro.Addr, vs[1])},
		{roi.CoordinateMappingSourcePositionXY, objectmodel.NewFloat(ro.Addr, vs[0], vs[1])},
	} {
		dro := objectmodel.New(derived.id, ro.Addr)
		if p.isActive(dro) {
			p.Base.NotifyListeners(p, dro, derived.d, meta)
		}
	}
}

func (p *Processor) isActive(ro objectmodel.RemoteObject) bool {
	for _, a := range p.Base.ActiveObjects() {
		if a == ro {
			return true
		}
	}
	return false
}

// SendRemoteObjectMessage either answers a value-query (empty payload: get
// current cached value, with Scene_Previous/Scene_Next special-cased as
// scene-index decrement/increment) or applies an incoming set, updating the
// cache and reflecting the result back as a set-acknowledgement
// (NoProtocolProtocolProcessor::SendRemoteObjectMessage).
func (p *Processor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	if p.Base.IsMuted(ro) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if data.IsDataEmpty() {
		return p.handleQuery(ro)
	}
	return p.handleSet(ro, data, externalID)
}

func (p *Processor) handleQuery(ro objectmodel.RemoteObject) error {
	switch ro.ID {
	case roi.ScenePrevious, roi.SceneNext:
		sceneRO := objectmodel.New(roi.SceneSceneIndex, objectmodel.Invalid)
		cur, ok := p.cache.Peek(sceneRO)
		if !ok {
			return nil
		}
		s, ok := cur.String()
		if !ok {
			return nil
		}
		idx := parseSceneIndex(s)
		if ro.ID == roi.ScenePrevious {
			idx--
		} else {
			idx++
		}
		setSceneIndex(p.cache, float32(idx))
		updated, _ := p.cache.Peek(sceneRO)
		p.Base.NotifyListeners(p, sceneRO, updated, objectmodel.NoMeta)
		return nil
	default:
		cached, ok := p.cache.Peek(ro)
		if !ok {
			return nil
		}
		p.Base.NotifyListeners(p, ro, cached.Borrow(), objectmodel.MetaInfo{Category: objectmodel.CategoryUnsolicited, ExternalID: objectmodel.InvalidExternalID})
		return nil
	}
}

func (p *Processor) handleSet(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	meta := objectmodel.MetaInfo{Category: objectmodel.CategorySetAcknowledgement, ExternalID: externalID}

	switch ro.ID {
	case roi.SceneRecall:
		idx := sceneIndexFromPayload(data)
		if idx != 0 {
			setSceneIndex(p.cache, idx)
		}
		return nil

	case roi.CoordinateMappingSourcePositionXY, roi.PositioningSourcePositionXY:
		return p.setXY(ro, data, meta, baseForXY(ro.ID))
	case roi.CoordinateMappingSourcePositionX, roi.PositioningSourcePositionX:
		return p.setComponent(ro, data, meta, baseForXY(ro.ID), 0)
	case roi.CoordinateMappingSourcePositionY, roi.PositioningSourcePositionY:
		return p.setComponent(ro, data, meta, baseForXY(ro.ID), 1)

	default:
		p.cache.Set(ro, data)
		p.Base.NotifyListeners(p, ro, data.Borrow(), meta)
		return nil
	}
}

func baseForXY(id roi.ID) roi.ID {
	if id == roi.CoordinateMappingSourcePositionXY || id == roi.CoordinateMappingSourcePositionX || id == roi.CoordinateMappingSourcePositionY {
		return roi.CoordinateMappingSourcePosition
	}
	return roi.PositioningSourcePosition
}

func xyVariants(base roi.ID) (xy, x, y roi.ID) {
	if base == roi.CoordinateMappingSourcePosition {
		return roi.CoordinateMappingSourcePositionXY, roi.CoordinateMappingSourcePositionX, roi.CoordinateMappingSourcePositionY
	}
	return roi.PositioningSourcePositionXY, roi.PositioningSourcePositionX, roi.PositioningSourcePositionY
}

func (p *Processor) setXY(ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo, base roi.ID) error {
	vs, ok := data.Floats()
	if !ok || len(vs) != 2 {
		return fmt.Errorf("noproto: %s requires 2 float values", ro.ID)
	}
	target := objectmodel.New(base, ro.Addr)
	full := p.xyzOrZero(target)
	full[0], full[1] = vs[0], vs[1]
	p.cache.Set(target, objectmodel.NewFloat(ro.Addr, full[:]...))

	_, x, y := xyVariants(base)
	p.Base.NotifyListeners(p, ro, data.Borrow(), meta)
	p.Base.NotifyListeners(p, target, objectmodel.NewFloat(ro.Addr, full[:]...), meta)
	p.Base.NotifyListeners(p, objectmodel.New(x, ro.Addr), objectmodel.NewFloat(ro.Addr, full[0]), meta)
	p.Base.NotifyListeners(p, objectmodel.New(y, ro.Addr), objectmodel.NewFloat(ro.Addr, full[1]), meta)
	return nil
}

func (p *Processor) setComponent(ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo, base roi.ID, index int) error {
	vs, ok := data.Floats()
	if !ok || len(vs) != 1 {
		return fmt.Errorf("noproto: %s requires 1 float value", ro.ID)
	}
	target := objectmodel.New(base, ro.Addr)
	full := p.xyzOrZero(target)
	full[index] = vs[0]
	p.cache.Set(target, objectmodel.NewFloat(ro.Addr, full[:]...))

	xy, _, _ := xyVariants(base)
	p.Base.NotifyListeners(p, ro, data.Borrow(), meta)
	p.Base.NotifyListeners(p, target, objectmodel.NewFloat(ro.Addr, full[:]...), meta)
	p.Base.NotifyListeners(p, objectmodel.New(xy, ro.Addr), objectmodel.NewFloat(ro.Addr, full[0], full[1]), meta)
	return nil
}

func (p *Processor) xyzOrZero(target objectmodel.RemoteObject) [3]float32 {
	if cached, ok := p.cache.Peek(target); ok {
		if vs, ok := cached.Floats(); ok && len(vs) == 3 {
			return [3]float32{vs[0], vs[1], vs[2]}
		}
	}
	return [3]float32{}
}

func parseSceneIndex(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func sceneIndexFromPayload(data objectmodel.MessageData) float32 {
	switch data.ValType {
	case objectmodel.ValueString:
		s, _ := data.String()
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 32)
		return float32(f)
	case objectmodel.ValueFloat:
		vs, ok := data.Floats()
		if ok && len(vs) == 1 {
			return vs[0]
		}
	case objectmodel.ValueInt:
		vs, ok := data.Ints()
		if ok && len(vs) == 2 {
			f, _ := strconv.ParseFloat(fmt.Sprintf("%d.%d", vs[0], vs[1]), 32)
			return float32(f)
		}
	}
	return 0
}
