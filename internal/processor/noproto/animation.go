package noproto

import (
	"math"
	"math/rand"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// AnimationMode selects how StepAnimation advances cached values
// (NoProtocolProtocolProcessor::AnimationMode).
type AnimationMode int

const (
	AnimationOff AnimationMode = iota
	AnimationCircle
	AnimationRandom
)

// animator holds the per-channel/per-value-index randomization state used
// by AnimationRandom (NoProtocolProtocolProcessor's m_channelRandomizedFactors
// / m_channelRandomizedScaleFactors / m_valueIdRandomizedFactors).
type animator struct {
	mode AnimationMode

	tick int

	channelFactor      map[int]float64
	channelScaleFactor map[int]float64
	valueIndexFactor   map[int]float64
}

func newAnimator(mode AnimationMode) *animator {
	a := &animator{
		mode:               mode,
		channelFactor:      make(map[int]float64),
		channelScaleFactor: make(map[int]float64),
		valueIndexFactor:   make(map[int]float64),
	}
	if mode == AnimationRandom {
		for ch := -1; ch <= ChannelCount; ch++ {
			a.channelFactor[ch] = rand.Float64()
			a.channelScaleFactor[ch] = rand.Float64()
		}
		a.valueIndexFactor[0] = rand.Float64()
		a.valueIndexFactor[1] = rand.Float64()
		a.valueIndexFactor[2] = rand.Float64()
	}
	return a
}

// bumpTick advances the internal callback counter, mirroring
// NoProtocolProtocolProcessor::BumpCallbackCount.
func (a *animator) bumpTick() { a.tick++ }

// isHeartbeatTick reports whether the current tick should emit a heartbeat,
// matching IsHeartBeatCallback's "every 40th callback" cadence.
func (a *animator) isHeartbeatTick() bool { return a.tick%40 == 0 }

// stepFloat computes the next value for one float element of an animated
// object (NoProtocolProtocolProcessor::CalculateValueStep, float overload).
func (a *animator) stepFloat(last float32, id roi.ID, channel, valueIndex int) float32 {
	normalized := a.normalizedValue(channel, valueIndex)
	if a.mode == AnimationOff {
		return last
	}
	min, max, ok := roi.ValueRange(id)
	if !ok {
		return float32(normalized)
	}
	return float32(min + normalized*(max-min))
}

// stepInt computes the next value for one int element of an animated object
// (NoProtocolProtocolProcessor::CalculateValueStep, int overload).
func (a *animator) stepInt(last int32, id roi.ID, channel, valueIndex int) int32 {
	normalized := a.normalizedValue(channel, valueIndex)
	if a.mode == AnimationOff {
		return last
	}
	min, max, ok := roi.ValueRange(id)
	if !ok {
		return int32(normalized + 0.5)
	}
	return int32(min + normalized*(max-min))
}

func (a *animator) normalizedValue(channel, valueIndex int) float64 {
	switch a.mode {
	case AnimationCircle:
		v := (math.Sin(0.1*float64(a.tick)+float64(channel)*0.1+float64(valueIndex)*math.Pi/2) + 1) * 0.5
		return v
	case AnimationRandom:
		v := (math.Sin(0.1*float64(a.tick)+a.channelFactor[channel]*float64(channel)*0.1+a.valueIndexFactor[valueIndex]*float64(valueIndex)*math.Pi/2) + 1) * a.channelScaleFactor[channel]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return v
	default:
		return 0
	}
}
