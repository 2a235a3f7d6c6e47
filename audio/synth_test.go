package audio

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/pthm-cable/coop/config"
	"github.com/pthm-cable/coop/game"
)

func testSynth(t *testing.T, tweak func(*config.AudioConfig)) *Synth {
	t.Helper()
	cfg := config.Default().Audio
	if tweak != nil {
		tweak(&cfg)
	}
	return NewSynth(cfg, rand.New(rand.NewSource(1)))
}

// drain streams s to the end and returns every sample.
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func TestOscillatorWaves(t *testing.T) {
	rate := beep.SampleRate(44100)
	rng := rand.New(rand.NewSource(2))

	tests := []struct {
		name string
		wave WaveType
		want func(v float64) bool
	}{
		{"sine", WaveSine, func(v float64) bool { return v >= -1 && v <= 1 }},
		{"square", WaveSquare, func(v float64) bool { return v == -1 || v == 1 }},
		{"saw", WaveSaw, func(v float64) bool { return v >= -1 && v < 1 }},
		{"noise", WaveNoise, func(v float64) bool { return v >= -1 && v < 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			osc := NewOscillator(440, 220, 50*time.Millisecond, tt.wave, rate, rng)
			samples := drain(t, osc)
			if len(samples) != rate.N(50*time.Millisecond) {
				t.Errorf("length = %d, want %d", len(samples), rate.N(50*time.Millisecond))
			}
			for i, s := range samples {
				if !tt.want(s[0]) || s[0] != s[1] {
					t.Fatalf("sample %d = %v", i, s)
				}
			}
			if osc.Err() != nil {
				t.Errorf("Err = %v", osc.Err())
			}
		})
	}
}

func TestEnvelopeShape(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(0, 0, 100*time.Millisecond, WaveSquare, rate, nil)
	env := NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate)
	s := drain(t, env)

	if len(s) != 100 {
		t.Fatalf("length = %d, want 100", len(s))
	}
	// Zero frequency square wave holds at 1, so samples are the envelope itself.
	if s[0][0] != 0 {
		t.Errorf("attack start = %v, want 0", s[0][0])
	}
	if s[50][0] != 1 {
		t.Errorf("sustain = %v, want 1", s[50][0])
	}
	if s[99][0] > 0.1 {
		t.Errorf("release end = %v, want near 0", s[99][0])
	}
}

func TestCueLengths(t *testing.T) {
	syn := testSynth(t, nil)
	for _, kind := range []game.EventKind{game.EventFoodDrop, game.EventRespawn} {
		got := len(drain(t, syn.Cue(game.Event{Kind: kind}, 1000)))
		if want := syn.CueLength(kind); got != want {
			t.Errorf("kind %d: %d samples, want %d", kind, got, want)
		}
	}

	got := len(drain(t, syn.Cue(game.Event{Kind: game.EventStartle}, 1000)))
	if want := syn.CueLength(game.EventStartle); got == 0 || got > want {
		t.Errorf("squawk: %d samples, want in (0, %d]", got, want)
	}

	if syn.Cue(game.Event{Kind: game.EventKind(99)}, 1000) != nil {
		t.Error("unknown kind produced a cue")
	}
}

func TestCueMutedAtZeroVolume(t *testing.T) {
	syn := testSynth(t, func(c *config.AudioConfig) { c.MasterVolume = 0 })
	for _, s := range drain(t, syn.Cue(game.Event{Kind: game.EventRespawn}, 1000)) {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("muted cue produced %v", s)
		}
	}
}

func TestCuePansByPosition(t *testing.T) {
	syn := testSynth(t, nil)

	energy := func(x float64) (l, r float64) {
		for _, s := range drain(t, syn.Cue(game.Event{Kind: game.EventRespawn, X: x}, 1000)) {
			l += math.Abs(s[0])
			r += math.Abs(s[1])
		}
		return l, r
	}
	if l, r := energy(50); l <= r {
		t.Errorf("left event: l=%v r=%v, want left louder", l, r)
	}
	if l, r := energy(950); r <= l {
		t.Errorf("right event: l=%v r=%v, want right louder", l, r)
	}
}

func TestPlayerRateLimit(t *testing.T) {
	p := NewPlayer(config.Default().Audio, 1000, 1)
	now := time.Now()

	if !p.admit(game.EventStartle, now) {
		t.Fatal("first cue refused")
	}
	if p.admit(game.EventStartle, now.Add(cueGap/2)) {
		t.Error("second cue inside the gap admitted")
	}
	if !p.admit(game.EventFoodDrop, now.Add(cueGap/2)) {
		t.Error("other kind blocked by the gap")
	}
	if !p.admit(game.EventStartle, now.Add(cueGap+time.Millisecond)) {
		t.Error("cue after the gap refused")
	}

	// Without Init nothing is mixed.
	p.Play([]game.Event{{Kind: game.EventRespawn}})
	if p.mixer.Len() != 0 {
		t.Errorf("mixer has %d streamers before Init", p.mixer.Len())
	}
}

func TestPlayerDisabledInit(t *testing.T) {
	cfg := config.Default().Audio
	cfg.Enabled = false
	p := NewPlayer(cfg, 1000, 1)
	if err := p.Init(); err != nil {
		t.Fatalf("Init with audio disabled: %v", err)
	}
	if p.initialized {
		t.Error("disabled player opened the speaker")
	}
	p.Close()
}
