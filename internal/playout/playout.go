// Package playout implements the paced re-transmission worker described in
// §4.6: one goroutine per playing session, walking the indexed frame lists
// back out at the original inter-frame spacing.
package playout

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/pion/rtp"

	"github.com/auvious/janus-gateway/internal/indexer"
)

// ErrNoTracks is returned by NewWorker when neither track has an index to play.
var ErrNoTracks = errors.New("playout: session has no indexed tracks")

// Clock rates for AudioClockRate's codec table and the fixed video rate
// (§4.6: "48 kHz for Opus and most audio, 8 kHz for PCMU/PCMA/G.722, 90 kHz
// for video").
const (
	ClockRateWideband   uint32 = 48000
	ClockRateNarrowband uint32 = 8000
	videoClockRate      uint32 = 90000

	earlyThreshold = 5 * time.Millisecond
	idleSleep      = 5 * time.Millisecond
)

// AudioClockRate maps a codec name to its RTP clock rate.
func AudioClockRate(codec string) uint32 {
	switch codec {
	case "pcmu", "pcma", "g722":
		return ClockRateNarrowband
	default:
		return ClockRateWideband
	}
}

// Sender is the minimal contract the scheduler needs to relay a packet,
// satisfied by codecs.PlayoutTrack.
type Sender interface {
	WriteRTP(packet *rtp.Packet) error
}

// trackState is the per-track cursor the scheduler advances each iteration.
type trackState struct {
	file      *os.File
	index     *indexer.Index
	cur       *indexer.Frame
	sender    Sender
	clockRate uint32

	started   bool
	before    time.Time
	lastExtTS uint64
}

func newTrackState(path string, idx *indexer.Index, sender Sender, clockRate uint32) (*trackState, error) {
	if idx == nil || idx.Head == nil {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &trackState{
		file:      f,
		index:     idx,
		cur:       idx.Head,
		sender:    sender,
		clockRate: clockRate,
	}, nil
}

func (t *trackState) done() bool { return t == nil || t.cur == nil }

func (t *trackState) close() {
	if t != nil && t.file != nil {
		_ = t.file.Close()
	}
}

// Worker runs the playout loop for one session's audio and video tracks.
type Worker struct {
	Audio *trackState
	Video *trackState

	// Done reports whether the owning session has been torn down; the
	// worker checks it once per iteration (§5's cooperative cancellation).
	Done func() bool

	// OnFinished is invoked once after both tracks are exhausted or Done
	// returns true, used by the caller to release references and hangup.
	OnFinished func()
}

// NewWorker builds a Worker from the session's loaded indices, opening one
// read-only file handle per present track.
func NewWorker(audioPath string, audioIndex *indexer.Index, audioSender Sender, audioClockRate uint32,
	videoPath string, videoIndex *indexer.Index, videoSender Sender, done func() bool, onFinished func()) (*Worker, error) {

	audio, err := newTrackState(audioPath, audioIndex, audioSender, audioClockRate)
	if err != nil {
		return nil, err
	}

	video, err := newTrackState(videoPath, videoIndex, videoSender, videoClockRate)
	if err != nil {
		audio.close()
		return nil, err
	}

	if audio == nil && video == nil {
		return nil, ErrNoTracks
	}

	return &Worker{Audio: audio, Video: video, Done: done, OnFinished: onFinished}, nil
}

// Run executes the pacing loop until both tracks are exhausted or Done
// returns true (§4.6). It is meant to run in its own goroutine.
func (w *Worker) Run() {
	defer w.cleanup()

	for {
		if w.Done != nil && w.Done() {
			return
		}

		if w.Audio.done() && w.Video.done() {
			return
		}

		sentAny := false

		if !w.Audio.done() {
			sent, err := w.step(w.Audio, false)
			if err != nil {
				log.Println("playout.Worker.Run: audio step failed", err)
				w.Audio.cur = nil
			}
			sentAny = sentAny || sent
		}

		if !w.Video.done() {
			sent, err := w.step(w.Video, true)
			if err != nil {
				log.Println("playout.Worker.Run: video step failed", err)
				w.Video.cur = nil
			}
			sentAny = sentAny || sent
		}

		if !sentAny {
			time.Sleep(idleSleep)
		}
	}
}

// step considers exactly one track for exactly one send decision, per
// §4.6's "Each iteration considers audio and video independently."
func (w *Worker) step(t *trackState, video bool) (sent bool, err error) {
	frame := t.cur

	if !t.started {
		if err := w.send(t, frame, video); err != nil {
			return false, err
		}
		t.started = true
		t.before = time.Now()
		t.lastExtTS = frame.ExtTS
		t.cur = frame.Next
		return true, nil
	}

	deltaTS := frame.ExtTS - t.lastExtTS
	deltaUs := deltaTS * 1_000_000 / uint64(t.clockRate)
	due := time.Duration(deltaUs) * time.Microsecond

	elapsed := time.Since(t.before)
	if elapsed < due-earlyThreshold {
		return false, nil
	}

	if err := w.send(t, frame, video); err != nil {
		return false, err
	}

	t.before = t.before.Add(due)
	t.lastExtTS = frame.ExtTS
	t.cur = frame.Next

	if video {
		for t.cur != nil && t.cur.ExtTS == frame.ExtTS {
			next := t.cur
			if err := w.send(t, next, video); err != nil {
				return true, err
			}
			t.cur = next.Next
		}
	}

	return true, nil
}

func (w *Worker) send(t *trackState, frame *indexer.Frame, video bool) error {
	buf := make([]byte, frame.Length)
	if _, err := t.file.ReadAt(buf, frame.Offset); err != nil {
		return err
	}

	var packet rtp.Packet
	if err := packet.Unmarshal(buf); err != nil {
		return err
	}

	return t.sender.WriteRTP(&packet)
}

func (w *Worker) cleanup() {
	w.Audio.close()
	w.Video.close()

	if w.OnFinished != nil {
		w.OnFinished()
	}
}
