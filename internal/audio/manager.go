// Package audio plays wav clips on numbered channels through one beep mixer.
//
// Scripts only enqueue requests; Flush applies them once per frame from the
// game loop, so clip decoding and mixer changes never happen mid-hook.
package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

// MaxVolume is the full-scale channel volume scripts pass to SetVolume.
const MaxVolume = 128

type requestKind int

const (
	reqPlay requestKind = iota
	reqHalt
	reqVolume
)

type request struct {
	kind    requestKind
	channel int
	clip    string
	loop    bool
	volume  float64
}

type channel struct {
	clip string
	ctrl *beep.Ctrl
	vol  *effects.Volume
}

// Manager owns the mixer, the decoded clip cache and the per-channel
// controls.
type Manager struct {
	dir        string
	enabled    bool
	sampleRate beep.SampleRate
	limit      int // channel count; 0 means unlimited

	mixer    *beep.Mixer
	clips    map[string]*beep.Buffer
	channels map[int]*channel
	volumes  map[int]float64
	queue    []request

	initialized bool
	log         *zap.Logger
}

// New returns a manager reading clips from dir. With enabled false nothing
// reaches the speaker, but requests are still decoded and mixed so the
// channel state stays observable.
func New(dir string, enabled bool, sampleRate int, log *zap.Logger) *Manager {
	return &Manager{
		dir:        dir,
		enabled:    enabled,
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      &beep.Mixer{},
		clips:      make(map[string]*beep.Buffer),
		channels:   make(map[int]*channel),
		volumes:    make(map[int]float64),
		log:        log,
	}
}

// SetChannels limits the valid channel numbers to 0..n-1. Requests for
// other channels are dropped with a warning.
func (m *Manager) SetChannels(n int) { m.limit = n }

// Init opens the speaker when audio is enabled.
func (m *Manager) Init() error {
	if !m.enabled || m.initialized {
		return nil
	}
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Millisecond*100)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Play queues clip on channel, replacing whatever the channel is playing.
func (m *Manager) Play(ch int, clip string, loop bool) {
	m.queue = append(m.queue, request{kind: reqPlay, channel: ch, clip: clip, loop: loop})
}

// Halt queues a stop of channel.
func (m *Manager) Halt(ch int) {
	m.queue = append(m.queue, request{kind: reqHalt, channel: ch})
}

// SetVolume queues a volume change, 0..MaxVolume.
func (m *Manager) SetVolume(ch int, volume float64) {
	m.queue = append(m.queue, request{kind: reqVolume, channel: ch, volume: volume})
}

// Pending returns the number of queued requests.
func (m *Manager) Pending() int { return len(m.queue) }

// Flush applies queued requests in order.
func (m *Manager) Flush() {
	if len(m.queue) == 0 {
		return
	}
	if m.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	for _, r := range m.queue {
		if r.channel < 0 || (m.limit > 0 && r.channel >= m.limit) {
			m.log.Warn("audio channel out of range", zap.Int("channel", r.channel), zap.Int("channels", m.limit))
			continue
		}
		switch r.kind {
		case reqPlay:
			m.play(r.channel, r.clip, r.loop)
		case reqHalt:
			m.halt(r.channel)
		case reqVolume:
			m.setVolume(r.channel, r.volume)
		}
	}
	m.queue = m.queue[:0]
}

func (m *Manager) play(ch int, clip string, loop bool) {
	buf, err := m.load(clip)
	if err != nil {
		m.log.Warn("audio clip unavailable", zap.String("clip", clip), zap.Error(err))
		return
	}
	m.halt(ch)

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if loop {
		s = beep.Loop(-1, buf.Streamer(0, buf.Len()))
	}
	if buf.Format().SampleRate != m.sampleRate {
		s = beep.Resample(4, buf.Format().SampleRate, m.sampleRate, s)
	}
	ctrl := &beep.Ctrl{Streamer: s}
	vol := &effects.Volume{Streamer: ctrl, Base: 2}
	c := &channel{clip: clip, ctrl: ctrl, vol: vol}
	m.channels[ch] = c
	m.applyVolume(c, m.volume(ch))
	m.mixer.Add(vol)
}

func (m *Manager) halt(ch int) {
	c, ok := m.channels[ch]
	if !ok {
		return
	}
	c.ctrl.Paused = true
	c.ctrl.Streamer = nil // the mixer drops a drained streamer
	delete(m.channels, ch)
}

func (m *Manager) setVolume(ch int, v float64) {
	v = math.Max(0, math.Min(MaxVolume, v))
	m.volumes[ch] = v
	if c, ok := m.channels[ch]; ok {
		m.applyVolume(c, v)
	}
}

func (m *Manager) volume(ch int) float64 {
	if v, ok := m.volumes[ch]; ok {
		return v
	}
	return MaxVolume
}

func (m *Manager) applyVolume(c *channel, v float64) {
	if v <= 0 {
		c.vol.Silent = true
		c.vol.Volume = 0
		return
	}
	c.vol.Silent = false
	c.vol.Volume = math.Log2(v / MaxVolume)
}

// load decodes resources/audio/<clip>.wav once and caches it.
func (m *Manager) load(clip string) (*beep.Buffer, error) {
	if buf, ok := m.clips[clip]; ok {
		return buf, nil
	}
	f, err := os.Open(filepath.Join(m.dir, clip+".wav"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no %s.wav in %s", clip, m.dir)
		}
		return nil, err
	}
	defer f.Close()
	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", clip, err)
	}
	defer s.Close()
	buf := beep.NewBuffer(format)
	buf.Append(s)
	m.clips[clip] = buf
	return buf, nil
}

// Playing returns the clip on channel, or "" when silent.
func (m *Manager) Playing(ch int) string {
	if c, ok := m.channels[ch]; ok {
		return c.clip
	}
	return ""
}

// Volume returns the configured volume of channel.
func (m *Manager) Volume(ch int) float64 { return m.volume(ch) }

// Mixer exposes the mix for tests and offline rendering.
func (m *Manager) Mixer() *beep.Mixer { return m.mixer }

// Close silences every channel.
func (m *Manager) Close() {
	if m.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	for ch := range m.channels {
		m.halt(ch)
	}
	m.mixer.Clear()
	m.initialized = false
}
