// Package session implements the per-peer Session data model and state
// machine (§3, §4.5) plus the process-wide session table (§4.3's sibling
// for live peers).
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/rtp"
	pionwebrtc "github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/feedback"
	"github.com/auvious/janus-gateway/internal/indexer"
	"github.com/auvious/janus-gateway/internal/mjr"
	"github.com/auvious/janus-gateway/internal/recording"
)

var (
	ErrInvalidState  = errors.New("session: invalid state for requested operation")
	ErrDestroyed     = errors.New("session: operating on a destroyed session")
	ErrAlreadyHasRec = errors.New("session: session already has a recording")
)

// FrameSender relays one paced RTP packet to a viewer's transport, matching
// codecs.PlayoutTrack's WriteRTP method (§4.6).
type FrameSender interface {
	WriteRTP(packet *rtp.Packet) error
}

// Transport is the minimal contract a session needs from its peer
// connection / RTP transport, named as an external collaborator per §1, §6.
// A real transport hangs up the peer and tears down media on Close.
type Transport interface {
	Close() error
}

// Session is per-peer state (§3). A Session holds exactly one reference to
// its Recording, released on hangup.
type Session struct {
	ID        string
	Transport Transport

	mu    sync.Mutex
	role  Role
	state State

	active atomic.Bool

	rec atomic.Pointer[recording.Recording]

	// PC is the pion/webrtc peer connection backing this session, set once
	// the record/play offer-answer exchange begins (mirrors the teacher's
	// atomic.Pointer[whip.WHIPSession] idiom).
	PC atomic.Pointer[pionwebrtc.PeerConnection]

	// Recorder role: open writer handles, serialized by recordMutex.
	recordMutex sync.Mutex
	AudioWriter *mjr.Writer
	VideoWriter *mjr.Writer

	// Simulcast demotion (§4.4): once set, inbound RTP whose SSRC differs
	// from this value is dropped by the caller.
	SimulcastSSRC uint32

	// Player role: indexed frame lists, single-owner (the playout worker),
	// no lock needed per §5.
	AudioIndex *indexer.Index
	VideoIndex *indexer.Index

	// AudioSender/VideoSender relay paced packets to the viewer's peer
	// connection; set once before playout starts (§4.6).
	AudioSender FrameSender
	VideoSender FrameSender

	// SDP session id/version counters, monotonically non-decreasing.
	SDPSessionID uint64
	SDPVersion   uint64

	// REMB/PLI pacing settings (§4.7). KeyframeInterval is copied into the
	// feedback governor when it is created; the governor keeps its own
	// REMB/PLI counters and does not read or update the other three fields.
	VideoRembStartup int
	VideoRembLast    time.Time
	KeyframeInterval time.Duration
	VideoPLILast     time.Time

	// Outbound target bitrate for a recording peer, set by `configure`.
	TargetBitrate atomic.Uint64

	// Governor holds the REMB/PLI pacing state for a recording session's
	// inbound video, set once recording begins (§4.7).
	Governor atomic.Pointer[feedback.Governor]

	hangupInProgress atomic.Bool
	destroyed        atomic.Bool
	refCount         atomic.Int32

	onDestroyed func(*Session)
}

// New constructs an Idle session attached to transport.
func New(id string, transport Transport) *Session {
	s := &Session{
		ID:               id,
		Transport:        transport,
		state:            Idle,
		role:             RoleNone,
		VideoRembStartup: 4,
		KeyframeInterval: 15 * time.Second,
	}
	s.refCount.Store(1)
	return s
}

// ViewerID satisfies recording.Viewer so a *Session can be appended to a
// Recording's viewer list without that package importing this one.
func (s *Session) ViewerID() string { return s.ID }

// Ref/Unref mirror Recording's reference counting (§5).
func (s *Session) Ref() { s.refCount.Add(1) }

func (s *Session) Unref() bool {
	if s.refCount.Add(-1) == 0 {
		s.destroyed.Store(true)
		return true
	}
	return false
}

func (s *Session) Destroyed() bool { return s.destroyed.Load() }

func (s *Session) Active() bool     { return s.active.Load() }
func (s *Session) SetActive(v bool) { s.active.Store(v) }

func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Recording() *recording.Recording {
	return s.rec.Load()
}

// BeginRecording transitions Idle -> Recording, attaching rec and the two
// (possibly nil) track writers. Fails ErrInvalidState unless the session is
// Idle or already Recording, or ErrAlreadyHasRec if a different recording
// is already attached.
func (s *Session) BeginRecording(rec *recording.Recording, audioWriter, videoWriter *mjr.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle && s.state != Recording {
		return ErrInvalidState
	}

	if existing := s.rec.Load(); existing != nil && existing != rec {
		return ErrAlreadyHasRec
	}

	s.role = RoleRecorder
	s.state = Recording
	s.rec.Store(rec)
	s.AudioWriter = audioWriter
	s.VideoWriter = videoWriter
	return nil
}

// BeginPreparing transitions Idle -> Preparing for a viewer session,
// attaching rec and whichever frame indices were built.
func (s *Session) BeginPreparing(rec *recording.Recording, audioIndex, videoIndex *indexer.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return ErrInvalidState
	}

	s.role = RolePlayer
	s.state = Preparing
	s.rec.Store(rec)
	s.AudioIndex = audioIndex
	s.VideoIndex = videoIndex
	return nil
}

// StartPlaying transitions Preparing -> Playing, requiring at least one
// frame index to have been loaded (§4.4's `start` validation).
func (s *Session) StartPlaying() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Preparing {
		return ErrInvalidState
	}

	if s.AudioIndex == nil && s.VideoIndex == nil {
		return ErrInvalidState
	}

	s.state = Playing
	return nil
}

// WriteAudioFrame appends an audio RTP packet to this session's audio
// writer, serialized under recordMutex (§5's ordering guarantee).
func (s *Session) WriteAudioFrame(payload []byte) error {
	s.recordMutex.Lock()
	defer s.recordMutex.Unlock()

	if s.AudioWriter == nil {
		return nil
	}
	return s.AudioWriter.SaveFrame(payload)
}

// WriteVideoFrame appends a video RTP packet to this session's video
// writer, serialized under recordMutex.
func (s *Session) WriteVideoFrame(payload []byte) error {
	s.recordMutex.Lock()
	defer s.recordMutex.Unlock()

	if s.VideoWriter == nil {
		return nil
	}
	return s.VideoWriter.SaveFrame(payload)
}

// Hangup runs the teardown path exactly once (idempotent via CAS on
// hangupInProgress, §4.5): closes both writers under recordMutex, drops
// frame indices, removes the session from its Recording's viewer list,
// releases the Recording reference, marks the final state, and notifies
// the session table.
func (s *Session) Hangup() {
	if !s.hangupInProgress.CompareAndSwap(false, true) {
		return
	}

	s.active.Store(false)

	s.recordMutex.Lock()
	if s.AudioWriter != nil {
		_ = s.AudioWriter.Close()
	}
	if s.VideoWriter != nil {
		_ = s.VideoWriter.Close()
	}
	s.recordMutex.Unlock()

	rec := s.rec.Load()

	s.mu.Lock()
	s.AudioIndex = nil
	s.VideoIndex = nil

	wasRecorder := s.role == RoleRecorder
	finalState := Done
	if wasRecorder {
		finalState = Completed
	}
	s.state = finalState
	s.mu.Unlock()

	if rec != nil {
		rec.RemoveViewer(s)
		if wasRecorder {
			rec.Complete()
		}
		rec.Unref()
	}

	if s.Transport != nil {
		_ = s.Transport.Close()
	}

	if pc := s.PC.Load(); pc != nil {
		_ = pc.Close()
	}

	if s.onDestroyed != nil {
		s.onDestroyed(s)
	}

	s.Unref()
}

// SetOnDestroyed registers a callback invoked once hangup completes, used
// by the session table to remove this session from its map.
func (s *Session) SetOnDestroyed(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDestroyed = fn
}

// SlowLinkEvent is the payload of a feedback notification (§4.5).
type SlowLinkEvent struct {
	Status   string `json:"status"`
	Uplink   bool   `json:"uplink"`
	Downlink bool   `json:"downlink"`
	Bitrate  uint64 `json:"current-bitrate"`
}

// SlowLink produces a notification carrying the current target bitrate
// with inverted uplink/downlink direction, per §4.5.
func (s *Session) SlowLink(uplink bool) SlowLinkEvent {
	return SlowLinkEvent{
		Status:   "slow_link",
		Uplink:   !uplink,
		Downlink: uplink,
		Bitrate:  s.TargetBitrate.Load(),
	}
}
