package cue

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pkt.systems/pslog"
)

const (
	sampleRate = 22050
	startGain  = 0.1
	endGain    = 0.01
	// baseWordsPerMinute is the espeak speed at rate 1.0.
	baseWordsPerMinute = 175
)

// CommandPlayer plays tones and speech through external programs: a WAV
// reader on stdin for tones (aplay by default) and a text-to-speech program
// taking the text as its last argument (espeak by default).
type CommandPlayer struct {
	toneArgs   []string
	speechArgs []string
	rate       float64
	log        pslog.Logger
}

// CommandConfig names the programs used by CommandPlayer.
type CommandConfig struct {
	ToneCommand   string
	SpeechCommand string
	SpeechRate    float64
}

// DefaultCommandConfig plays through aplay and espeak.
func DefaultCommandConfig() CommandConfig {
	return CommandConfig{
		ToneCommand:   "aplay -q",
		SpeechCommand: "espeak",
		SpeechRate:    DefaultSpeechRate,
	}
}

// NewCommandPlayer resolves the configured programs. Missing programs are not
// an error; the matching calls return ErrUnavailable.
func NewCommandPlayer(cfg CommandConfig, logger pslog.Logger) *CommandPlayer {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if cfg.SpeechRate <= 0 {
		cfg.SpeechRate = DefaultSpeechRate
	}
	p := &CommandPlayer{rate: cfg.SpeechRate, log: logger}
	p.toneArgs = resolve(cfg.ToneCommand, logger)
	p.speechArgs = resolve(cfg.SpeechCommand, logger)
	return p
}

func resolve(command string, logger pslog.Logger) []string {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil
	}
	path, err := exec.LookPath(args[0])
	if err != nil {
		logger.Debug("cue program not found", "program", args[0])
		return nil
	}
	args[0] = path
	return args
}

// ToneAvailable reports whether a tone program was found.
func (p *CommandPlayer) ToneAvailable() bool {
	return len(p.toneArgs) > 0
}

// SpeechAvailable reports whether a speech program was found.
func (p *CommandPlayer) SpeechAvailable() bool {
	return len(p.speechArgs) > 0
}

// Tone synthesises t and pipes it to the tone program.
func (p *CommandPlayer) Tone(ctx context.Context, t Tone) error {
	if !p.ToneAvailable() {
		return ErrUnavailable
	}
	cmd := exec.CommandContext(ctx, p.toneArgs[0], p.toneArgs[1:]...)
	cmd.Stdin = bytes.NewReader(SynthesizeWAV(t))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("play tone %.0f Hz: %w: %s", t.Frequency, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Speak runs the speech program with text.
func (p *CommandPlayer) Speak(ctx context.Context, text string) error {
	if !p.SpeechAvailable() {
		return ErrUnavailable
	}
	args := append([]string{}, p.speechArgs[1:]...)
	if strings.HasSuffix(p.speechArgs[0], "espeak") || strings.HasSuffix(p.speechArgs[0], "espeak-ng") {
		args = append(args, "-s", strconv.Itoa(int(math.Round(baseWordsPerMinute*p.rate))))
	}
	args = append(args, text)
	cmd := exec.CommandContext(ctx, p.speechArgs[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("speak %q: %w: %s", text, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SynthesizeWAV renders t as a mono 16-bit PCM WAV file. The gain decays
// exponentially from 0.1 to 0.01 over the tone.
func SynthesizeWAV(t Tone) []byte {
	duration := t.Duration
	if duration <= 0 {
		duration = 100 * time.Millisecond
	}
	n := int(math.Round(float64(sampleRate) * duration.Seconds()))
	samples := make([]int16, n)
	decay := math.Log(endGain / startGain)
	for i := range samples {
		progress := float64(i) / float64(n)
		gain := startGain * math.Exp(decay*progress)
		v := gain * math.Sin(2*math.Pi*t.Frequency*float64(i)/sampleRate)
		samples[i] = int16(v * math.MaxInt16)
	}

	dataSize := uint32(n * 2)
	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
