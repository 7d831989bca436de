// Package recording implements the Recording data model and the
// process-wide registry that catalogues recordings, in progress and
// completed (§3, §4.3).
package recording

import (
	"sync"
	"sync/atomic"
)

// Viewer is the minimal identity a Session must expose to appear in a
// Recording's viewer list. Recording never imports the session package —
// per §9's cyclic-reference note, the viewer list is kept acyclic by only
// ever holding this interface, with removal done explicitly on hangup
// rather than relying on any form of weak reference.
type Viewer interface {
	ViewerID() string
}

// Recording is immutable after Complete is called; see §3.
type Recording struct {
	ID   int64
	Name string
	Date string

	AudioFile  string // empty if no audio track
	VideoFile  string // empty if no video track
	AudioCodec string
	VideoCodec string
	AudioPT    uint8
	VideoPT    uint8

	// Offer is a precomputed SDP offer proving this recording has at least
	// one playable track; `play` rejects with NotFound when it's empty.
	// Its text is never sent to a viewer — each viewer negotiates against
	// its own peer connection, with its own ICE/DTLS parameters.
	Offer string

	viewersMu sync.RWMutex
	viewers   []Viewer

	completed atomic.Bool
	destroyed atomic.Bool
	refCount  atomic.Int32
}

// HasAudio reports whether this recording has an audio track.
func (r *Recording) HasAudio() bool { return r.AudioFile != "" }

// HasVideo reports whether this recording has a video track.
func (r *Recording) HasVideo() bool { return r.VideoFile != "" }

// Completed reports whether the recorder has hung up and the recording is
// now immutable and playable.
func (r *Recording) Completed() bool { return r.completed.Load() }

// Destroyed reports whether the recording's reference count has reached
// zero and it has been torn down.
func (r *Recording) Destroyed() bool { return r.destroyed.Load() }

// Complete marks the recording finished; called when the recorder session
// hangs up (§4.5).
func (r *Recording) Complete() { r.completed.Store(true) }

// Ref increments the reference count. Every holder — the registry, each
// viewer session, the recording writer while it is open — must call Ref
// once and Unref exactly once when it releases its hold (§3 Ownership, §5).
func (r *Recording) Ref() { r.refCount.Add(1) }

// Unref decrements the reference count and marks the recording destroyed
// once it reaches zero. Returns true if this call caused destruction.
func (r *Recording) Unref() bool {
	if r.refCount.Add(-1) == 0 {
		r.destroyed.Store(true)
		return true
	}

	return false
}

// AddViewer appends v to the viewer list if it is not already present.
func (r *Recording) AddViewer(v Viewer) {
	r.viewersMu.Lock()
	defer r.viewersMu.Unlock()

	for _, existing := range r.viewers {
		if existing.ViewerID() == v.ViewerID() {
			return
		}
	}

	r.viewers = append(r.viewers, v)
}

// RemoveViewer removes a previously added viewer by identity. Idempotent.
func (r *Recording) RemoveViewer(v Viewer) {
	r.viewersMu.Lock()
	defer r.viewersMu.Unlock()

	for i, existing := range r.viewers {
		if existing.ViewerID() == v.ViewerID() {
			r.viewers = append(r.viewers[:i], r.viewers[i+1:]...)
			return
		}
	}
}

// ViewerCount returns the number of active viewer sessions.
func (r *Recording) ViewerCount() int {
	r.viewersMu.RLock()
	defer r.viewersMu.RUnlock()

	return len(r.viewers)
}

// Summary is the snapshot shape returned by Registry.List (§4.3).
type Summary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Audio      bool   `json:"audio"`
	Video      bool   `json:"video"`
	AudioCodec string `json:"audio_codec,omitempty"`
	VideoCodec string `json:"video_codec,omitempty"`
}

// ToSummary produces the list-response shape for this recording.
func (r *Recording) ToSummary() Summary {
	return Summary{
		ID:         r.ID,
		Name:       r.Name,
		Date:       r.Date,
		Audio:      r.HasAudio(),
		Video:      r.HasVideo(),
		AudioCodec: r.AudioCodec,
		VideoCodec: r.VideoCodec,
	}
}
