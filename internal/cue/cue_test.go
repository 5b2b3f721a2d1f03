package cue

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/pslog"

	"rhythm/internal/timer"
)

func TestPlan(t *testing.T) {
	for _, tc := range []struct {
		name   string
		ev     timer.Event
		tone   *Tone
		speech string
		ok     bool
	}{
		{"countdown", timer.Event{Kind: timer.EventCountdown, SecondsLeft: 2}, &CountdownTone, "", true},
		{"rest", timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseRest, Round: 1, Duration: 10}, &RestTone, "Rest time", true},
		{"work with exercise", timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseWork, Round: 3, Exercise: "Plank"}, &WorkTone, "Round 3, Plank", true},
		{"work without exercise", timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseWork, Round: 2}, &WorkTone, "Round 2, work time", true},
		{"finished", timer.Event{Kind: timer.EventWorkoutFinished, TotalRounds: 5}, &FinishTone, "Workout complete", true},
		{"start from idle", timer.Event{Kind: timer.EventStarted, Phase: timer.PhaseWork, Round: 1, Exercise: "Rows"}, nil, "Round 1, Rows", true},
		{"resume", timer.Event{Kind: timer.EventStarted, Phase: timer.PhaseWork, Resumed: true}, nil, "", false},
		{"pause", timer.Event{Kind: timer.EventPaused}, nil, "", false},
		{"reset", timer.Event{Kind: timer.EventReset}, nil, "", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := Plan(tc.ev)
			if ok != tc.ok {
				t.Fatalf("ok %v, want %v", ok, tc.ok)
			}
			if (c.Tone == nil) != (tc.tone == nil) || (c.Tone != nil && *c.Tone != *tc.tone) {
				t.Errorf("tone %+v, want %+v", c.Tone, tc.tone)
			}
			if c.Speech != tc.speech {
				t.Errorf("speech %q, want %q", c.Speech, tc.speech)
			}
		})
	}
}

func TestToastFor(t *testing.T) {
	toast, ok := ToastFor(timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseRest, Duration: 15})
	if !ok || toast.Title != "Work Complete!" || toast.Message != "Rest for 15 seconds" {
		t.Errorf("rest toast %+v", toast)
	}
	toast, _ = ToastFor(timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseWork, Round: 2, Duration: 30})
	if toast.Title != "Next Round!" || toast.Message != "Round 2 - Work for 30 seconds" {
		t.Errorf("work toast %+v", toast)
	}
	toast, _ = ToastFor(timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseWork, Round: 4, Exercise: "Squats"})
	if toast.Message != "Round 4 - Squats" {
		t.Errorf("exercise toast %+v", toast)
	}
	toast, _ = ToastFor(timer.Event{Kind: timer.EventWorkoutFinished, TotalRounds: 8})
	if toast.Title != "Workout Complete!" || toast.Message != "You completed 8 rounds!" {
		t.Errorf("finish toast %+v", toast)
	}
	if _, ok := ToastFor(timer.Event{Kind: timer.EventCountdown}); ok {
		t.Error("countdown should not toast")
	}
}

type recordingPlayer struct {
	mu     sync.Mutex
	tones  []Tone
	speech []string
	err    error
}

func (r *recordingPlayer) Tone(_ context.Context, t Tone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tones = append(r.tones, t)
	return r.err
}

func (r *recordingPlayer) Speak(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speech = append(r.speech, text)
	return r.err
}

func TestAnnouncerPlaysEvents(t *testing.T) {
	player := &recordingPlayer{}
	a := NewAnnouncer(player, Options{Tones: true, Speech: true}, nil)
	events := make(chan timer.Event, 4)
	events <- timer.Event{Kind: timer.EventCountdown, SecondsLeft: 1}
	events <- timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseRest}
	events <- timer.Event{Kind: timer.EventPaused}
	close(events)
	a.Run(context.Background(), events)

	if len(player.tones) != 2 {
		t.Fatalf("tones %v", player.tones)
	}
	if len(player.speech) != 1 || player.speech[0] != "Rest time" {
		t.Fatalf("speech %v", player.speech)
	}
}

func TestAnnouncerRespectsOptions(t *testing.T) {
	player := &recordingPlayer{}
	a := NewAnnouncer(player, Options{Tones: false, Speech: true}, nil)
	events := make(chan timer.Event, 2)
	events <- timer.Event{Kind: timer.EventCountdown, SecondsLeft: 3}
	events <- timer.Event{Kind: timer.EventWorkoutFinished, TotalRounds: 2}
	close(events)
	a.Run(context.Background(), events)

	if len(player.tones) != 0 {
		t.Fatalf("tones played with tones disabled: %v", player.tones)
	}
	if len(player.speech) != 1 || player.speech[0] != "Workout complete" {
		t.Fatalf("speech %v", player.speech)
	}
}

func TestAnnouncerSwallowsFailures(t *testing.T) {
	player := &recordingPlayer{err: ErrUnavailable}
	a := NewAnnouncer(player, Options{Tones: true, Speech: true}, nil)
	events := make(chan timer.Event, 1)
	events <- timer.Event{Kind: timer.EventWorkoutFinished, TotalRounds: 1}
	close(events)
	a.Run(context.Background(), events)
	if len(player.speech) != 1 {
		t.Fatalf("speech should still be attempted after tone failure: %v", player.speech)
	}
}

func TestAnnouncerWithEngine(t *testing.T) {
	engine := timer.New(timer.Configuration{WorkDuration: 2, RestDuration: 1, Rounds: 1}, timer.WithScheduler(noopScheduler{}))
	ch, unsubscribe := engine.Subscribe(16)
	player := &recordingPlayer{}
	a := NewAnnouncer(player, Options{Tones: true, Speech: true}, nil)
	done := make(chan struct{})
	go func() {
		a.Run(context.Background(), ch)
		close(done)
	}()

	_ = engine.Start()
	for i := 0; i < 3; i++ {
		engine.Tick()
	}
	unsubscribe()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("announcer did not stop")
	}
	want := []string{"Round 1, work time", "Rest time", "Workout complete"}
	player.mu.Lock()
	defer player.mu.Unlock()
	if len(player.speech) != len(want) {
		t.Fatalf("speech %v, want %v", player.speech, want)
	}
	got := strings.Join(player.speech, "|")
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("speech %v missing %q", player.speech, w)
		}
	}
}

type noopScheduler struct{}

func (noopScheduler) Schedule(time.Duration, func()) func() { return func() {} }

func TestMultiReturnsFirstError(t *testing.T) {
	failing := &recordingPlayer{err: errors.New("boom")}
	ok := &recordingPlayer{}
	m := Multi{failing, ok}
	if err := m.Speak(context.Background(), "hi"); err == nil || err.Error() != "boom" {
		t.Fatalf("err %v", err)
	}
	if len(ok.speech) != 1 {
		t.Fatal("second player skipped after first failed")
	}
}

func TestSynthesizeWAV(t *testing.T) {
	data := SynthesizeWAV(WorkTone)
	if !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad header %q", data[:12])
	}
	size := binary.LittleEndian.Uint32(data[40:44])
	want := uint32(sampleRate*0.3) * 2
	if size != want || len(data) != 44+int(size) {
		t.Fatalf("data size %d (len %d), want %d", size, len(data), want)
	}
	first := int16(binary.LittleEndian.Uint16(data[46:48]))
	last := int16(binary.LittleEndian.Uint16(data[len(data)-2:]))
	const limit = 3277 // 0.1 of full scale, rounded up
	if first > limit || first < -limit || last > limit || last < -limit {
		t.Fatalf("samples exceed gain: %d %d", first, last)
	}
}

func TestCommandPlayerUnavailable(t *testing.T) {
	p := NewCommandPlayer(CommandConfig{ToneCommand: "rhythm-no-such-player", SpeechCommand: ""}, nil)
	if err := p.Tone(context.Background(), WorkTone); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Tone: %v", err)
	}
	if err := p.Speak(context.Background(), "hello"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Speak: %v", err)
	}
}

func TestLinePlayer(t *testing.T) {
	var buf bytes.Buffer
	p := NewLinePlayer(&buf)
	_ = p.Tone(context.Background(), RestTone)
	_ = p.Speak(context.Background(), "Rest time")
	out := buf.String()
	if !strings.Contains(out, "600 Hz") || !strings.Contains(out, "Rest time") {
		t.Fatalf("output %q", out)
	}
}

func TestAnnouncerLogsFailureWithEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.DebugLevel})
	player := &recordingPlayer{err: errors.New("boom")}
	a := NewAnnouncer(player, Options{Speech: true}, logger)
	events := make(chan timer.Event, 1)
	events <- timer.Event{Kind: timer.EventPhaseEntered, Phase: timer.PhaseWork, Round: 2, Exercise: "Plank"}
	close(events)
	a.Run(context.Background(), events)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	if entry["event"] != "phase_entered" || entry["exercise"] != "Plank" || entry["kind"] != "speech" {
		t.Fatalf("unexpected fields %+v", entry)
	}
	if round, ok := entry["round"].(float64); !ok || round != 2 {
		t.Fatalf("round field %+v", entry["round"])
	}
}
