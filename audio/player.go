package audio

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
)

// cueGap is the minimum time between two cues of the same kind.
// A mass startle emits dozens of events in one tick.
const cueGap = 90 * time.Millisecond

// maxVoices caps concurrently mixed cues.
const maxVoices = 12

// Player plays event cues through the system speaker.
type Player struct {
	mu          sync.Mutex
	synth       *Synth
	mixer       *beep.Mixer
	last        map[game.EventKind]time.Time
	worldW      float64
	enabled     bool
	initialized bool
}

// NewPlayer creates a player. Nothing is played until Init succeeds.
func NewPlayer(cfg config.AudioConfig, worldW float64, seed int64) *Player {
	return &Player{
		synth:   NewSynth(cfg, rand.New(rand.NewSource(seed))),
		mixer:   &beep.Mixer{},
		last:    make(map[game.EventKind]time.Time),
		worldW:  worldW,
		enabled: cfg.Enabled,
	}
}

// Init opens the speaker. It is a no-op when audio is disabled.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.enabled {
		return nil
	}

	rate := p.synth.SampleRate()
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// SetWorldWidth updates the width used for stereo panning.
func (p *Player) SetWorldWidth(w float64) {
	p.mu.Lock()
	p.worldW = w
	p.mu.Unlock()
}

// Play queues cues for events, at most one per kind per cueGap.
func (p *Player) Play(events []game.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || len(events) == 0 {
		return
	}
	now := time.Now()
	var cues []beep.Streamer
	for _, ev := range events {
		if !p.admit(ev.Kind, now) {
			continue
		}
		if st := p.synth.Cue(ev, p.worldW); st != nil {
			cues = append(cues, st)
		}
	}
	if len(cues) == 0 {
		return
	}

	speaker.Lock()
	if p.mixer.Len()+len(cues) <= maxVoices {
		p.mixer.Add(cues...)
	}
	speaker.Unlock()
}

// admit applies the per-kind rate limit and records accepted cues.
func (p *Player) admit(kind game.EventKind, now time.Time) bool {
	if t, ok := p.last[kind]; ok && now.Sub(t) < cueGap {
		return false
	}
	p.last[kind] = now
	return true
}

// Close stops all cues and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
