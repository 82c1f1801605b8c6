// Package player holds the transport-control state for the playback
// surface: play/pause, rate, seeking, and the periodic position feed.
// The actual decoder is an external collaborator that consumes a
// MediaRef and calls back into the transport.
package player

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

// MediaRef is a playable reference: a remote URL or a local file path,
// exactly one of which is set.
type MediaRef struct {
	URL       string
	LocalPath string
}

// Resolve turns a catalog video into a playable reference. A local or
// downloaded video whose file is gone yields ErrMediaNotFound; the
// catalog record is left for the user to deal with.
func Resolve(v *models.Video) (MediaRef, error) {
	switch v.SourceType {
	case domain.Local, domain.Downloaded:
		if v.LocalPath == nil || *v.LocalPath == "" {
			return MediaRef{}, models.ErrInvalidArgument
		}
		if _, err := os.Stat(*v.LocalPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return MediaRef{}, models.ErrMediaNotFound
			}
			return MediaRef{}, err
		}
		return MediaRef{LocalPath: *v.LocalPath}, nil
	case domain.Streaming:
		if v.SourceURL == nil || *v.SourceURL == "" {
			return MediaRef{}, models.ErrInvalidArgument
		}
		return MediaRef{URL: *v.SourceURL}, nil
	}
	return MediaRef{}, models.ErrInvalidArgument
}

// State is a snapshot of the transport.
type State struct {
	Ref      MediaRef
	Playing  bool
	Rate     float64
	Position float64
	Duration float64
	Seeking  bool
}

// Transport is mutated from two sides at once: the periodic position
// callback of the decoder and user intents. The one discipline that
// keeps the two honest is the seeking flag: while a seek is in flight,
// position ticks are dropped so the displayed position cannot jump
// backwards to a stale sample.
type Transport struct {
	mu       sync.Mutex
	ref      MediaRef
	loaded   bool
	playing  bool
	rate     float64
	position float64
	duration float64
	seeking  bool
}

func NewTransport() *Transport {
	return &Transport{rate: 1.0}
}

// Load resolves the video and resets the transport to it.
func (t *Transport) Load(v *models.Video) error {
	ref, err := Resolve(v)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ref = ref
	t.loaded = true
	t.playing = false
	t.rate = 1.0
	t.position = 0
	t.duration = 0
	t.seeking = false
	return nil
}

func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return models.ErrInvalidArgument
	}
	t.playing = true
	return nil
}

func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
}

func (t *Transport) SetRate(rate float64) error {
	if rate <= 0 {
		return models.ErrInvalidArgument
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rate = rate
	return nil
}

// SetDuration is called once the decoder knows the media duration.
func (t *Transport) SetDuration(d float64) {
	if d < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
}

// BeginSeek marks a seek as in flight and moves the displayed position
// to the target immediately.
func (t *Transport) BeginSeek(target float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if target < 0 {
		target = 0
	}
	if t.duration > 0 && target > t.duration {
		target = t.duration
	}
	t.seeking = true
	t.position = target
}

// EndSeek completes the seek at the position the decoder landed on.
func (t *Transport) EndSeek(actual float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seeking = false
	if actual >= 0 {
		t.position = actual
	}
}

// OnTick feeds a periodic position sample. Samples arriving while a
// seek is in flight are dropped.
func (t *Transport) OnTick(pos float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seeking {
		return
	}
	if pos >= 0 {
		t.position = pos
	}
}

func (t *Transport) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Ref:      t.ref,
		Playing:  t.playing,
		Rate:     t.rate,
		Position: t.position,
		Duration: t.duration,
		Seeking:  t.seeking,
	}
}
