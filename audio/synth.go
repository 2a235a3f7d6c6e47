// Package audio synthesizes short cues for flock events and plays them
// through a beep mixer.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
)

// Cue timing.
const (
	squawkDuration = 180 * time.Millisecond
	squawkAttack   = 8 * time.Millisecond
	squawkRelease  = 120 * time.Millisecond

	patterClick   = 25 * time.Millisecond
	patterGap     = 35 * time.Millisecond
	patterRelease = 20 * time.Millisecond
	patterClicks  = 4

	cluckNote    = 70 * time.Millisecond
	cluckGap     = 40 * time.Millisecond
	cluckAttack  = 5 * time.Millisecond
	cluckRelease = 50 * time.Millisecond
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a raw wave, gliding linearly from freq to freqEnd.
type oscillator struct {
	freq, freqEnd float64
	phase         float64
	duration      int
	position      int
	wave          WaveType
	rate          beep.SampleRate
	rng           *rand.Rand
}

// NewOscillator creates an oscillator gliding from freq to freqEnd over duration.
// rng feeds WaveNoise and may be nil for the other shapes.
func NewOscillator(freq, freqEnd float64, duration time.Duration, wave WaveType, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	return &oscillator{
		freq:     freq,
		freqEnd:  freqEnd,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rng,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		frac := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.freqEnd-o.freq)*frac
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/sustain/release envelope over duration.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: max(total-att-rel, 0),
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a linear volume. math.Log2(0) is -Inf, so zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Synth builds cue streamers for game events.
type Synth struct {
	cfg  config.AudioConfig
	rate beep.SampleRate
	rng  *rand.Rand
}

// NewSynth creates a synth. rng seeds the noise-based cues.
func NewSynth(cfg config.AudioConfig, rng *rand.Rand) *Synth {
	return &Synth{
		cfg:  cfg,
		rate: beep.SampleRate(cfg.SampleRate),
		rng:  rng,
	}
}

// SampleRate returns the rate cues are rendered at.
func (s *Synth) SampleRate() beep.SampleRate {
	return s.rate
}

// Cue returns the streamer for an event, panned by its x position in a world
// of width worldW. Returns nil for unknown kinds.
func (s *Synth) Cue(ev game.Event, worldW float64) beep.Streamer {
	var (
		st  beep.Streamer
		vol float64
	)
	switch ev.Kind {
	case game.EventStartle:
		st, vol = s.Squawk(), s.cfg.StartleVolume
	case game.EventFoodDrop:
		st, vol = s.Patter(), s.cfg.DropVolume
	case game.EventRespawn:
		st, vol = s.Cluck(), s.cfg.RespawnVolume
	default:
		return nil
	}

	pan := 0.0
	if worldW > 0 {
		pan = math.Max(-1, math.Min(1, 2*ev.X/worldW-1)) * 0.8
	}
	return &effects.Pan{Streamer: newVolume(st, vol*s.cfg.MasterVolume), Pan: pan}
}

// Squawk is a falling saw cry layered over a noise burst, for startles.
func (s *Synth) Squawk() beep.Streamer {
	cry := NewOscillator(900, 520, squawkDuration, WaveSaw, s.rate, nil)
	burst := NewOscillator(0, 0, squawkDuration/3, WaveNoise, s.rate, s.rng)
	return beep.Mix(
		newVolume(NewEnvelope(cry, squawkDuration, squawkAttack, squawkRelease, s.rate), 0.6),
		newVolume(NewEnvelope(burst, squawkDuration/3, 0, squawkDuration/4, s.rate), 0.3),
	)
}

// Patter is a few short noise clicks, like seed landing on dirt.
func (s *Synth) Patter() beep.Streamer {
	parts := make([]beep.Streamer, 0, 2*patterClicks)
	for i := 0; i < patterClicks; i++ {
		click := NewOscillator(0, 0, patterClick, WaveNoise, s.rate, s.rng)
		parts = append(parts, NewEnvelope(click, patterClick, 0, patterRelease, s.rate))
		if i < patterClicks-1 {
			parts = append(parts, beep.Silence(s.rate.N(patterGap)))
		}
	}
	return beep.Seq(parts...)
}

// Cluck is two short descending square notes, for agents leaving the coop.
func (s *Synth) Cluck() beep.Streamer {
	n1 := NewOscillator(330, 300, cluckNote, WaveSquare, s.rate, nil)
	n2 := NewOscillator(262, 240, cluckNote, WaveSquare, s.rate, nil)
	return beep.Seq(
		NewEnvelope(n1, cluckNote, cluckAttack, cluckRelease, s.rate),
		beep.Silence(s.rate.N(cluckGap)),
		NewEnvelope(n2, cluckNote, cluckAttack, cluckRelease, s.rate),
	)
}

// CueLength returns the length of a cue kind in samples.
func (s *Synth) CueLength(kind game.EventKind) int {
	switch kind {
	case game.EventStartle:
		return s.rate.N(squawkDuration)
	case game.EventFoodDrop:
		return patterClicks*s.rate.N(patterClick) + (patterClicks-1)*s.rate.N(patterGap)
	case game.EventRespawn:
		return 2*s.rate.N(cluckNote) + s.rate.N(cluckGap)
	}
	return 0
}
