package midi

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is the sample rate used by the monitor.
const DefaultSampleRate = beep.SampleRate(44100)

// NoteFreq returns the equal-temperament frequency of a MIDI note,
// with A4 (69) at 440 Hz.
func NoteFreq(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69.0)/12.0)
}

// voice is one sounding note.
type voice struct {
	freq  float64
	phase float64
	amp   float64 // current envelope level 0..1
	peak  float64
	held  bool
}

// Synth is a Sink that renders notes as sine voices. It implements
// beep.Streamer and is driven from the speaker goroutine, so it locks.
type Synth struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	voices map[uint16]*voice

	attackStep  float64
	releaseStep float64
	gain        float64
}

// NewSynth creates a synth with the given envelope times.
func NewSynth(rate beep.SampleRate, attack, release time.Duration) *Synth {
	s := &Synth{
		rate:   rate,
		voices: make(map[uint16]*voice),
		gain:   0.2,
	}
	s.attackStep = envelopeStep(rate, attack)
	s.releaseStep = envelopeStep(rate, release)
	return s
}

func envelopeStep(rate beep.SampleRate, d time.Duration) float64 {
	n := rate.N(d)
	if n <= 0 {
		return 1
	}
	return 1 / float64(n)
}

func voiceKey(note, channel uint8) uint16 {
	return uint16(channel&0x0f)<<8 | uint16(note&0x7f)
}

// NoteOn implements Sink.
func (s *Synth) NoteOn(note, velocity, channel uint8) {
	if velocity == 0 {
		s.NoteOff(note, 0, channel)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voiceKey(note, channel)
	v, ok := s.voices[k]
	if !ok {
		v = &voice{freq: NoteFreq(note)}
		s.voices[k] = v
	}
	v.peak = float64(velocity&0x7f) / 127
	v.held = true
}

// NoteOff implements Sink.
func (s *Synth) NoteOff(note, _, channel uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.voices[voiceKey(note, channel)]; ok {
		v.held = false
	}
}

// ProgramChange implements Sink. The synth has a single timbre.
func (s *Synth) ProgramChange(uint8, uint8) {}

// Voices returns the number of voices still producing sound.
func (s *Synth) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// Stream implements beep.Streamer. It never ends.
func (s *Synth) Stream(samples [][2]float64) (n int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range samples {
		var sum float64
		for k, v := range s.voices {
			if v.held {
				v.amp = math.Min(v.peak, v.amp+s.attackStep)
			} else {
				v.amp -= s.releaseStep
				if v.amp <= 0 {
					delete(s.voices, k)
					continue
				}
			}
			sum += v.amp * math.Sin(2*math.Pi*v.phase)
			v.phase += v.freq / float64(s.rate)
			v.phase -= math.Floor(v.phase)
		}
		sum *= s.gain
		if sum > 1 {
			sum = 1
		} else if sum < -1 {
			sum = -1
		}
		samples[i][0] = sum
		samples[i][1] = sum
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *Synth) Err() error { return nil }

// Play initializes the speaker and starts streaming the synth.
func (s *Synth) Play() error {
	if err := speaker.Init(s.rate, s.rate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s)
	return nil
}

// Close stops playback.
func (s *Synth) Close() {
	speaker.Clear()
	speaker.Close()
}
