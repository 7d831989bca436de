package session

import (
	"testing"

	"github.com/auvious/janus-gateway/internal/recording"
)

type noopTransport struct{ closed bool }

func (t *noopTransport) Close() error {
	t.closed = true
	return nil
}

func TestBeginRecordingRejectsASecondRecording(t *testing.T) {
	s := New("handle-1", nil)
	rec := &recording.Recording{ID: 1}

	if err := s.BeginRecording(rec, nil, nil); err != nil {
		t.Fatalf("BeginRecording: %v", err)
	}

	if s.State() != Recording {
		t.Fatalf("expected state Recording, got %v", s.State())
	}

	if s.Recording() != rec {
		t.Fatal("expected Recording() to return the attached recording")
	}

	other := &recording.Recording{ID: 2}
	if err := s.BeginRecording(other, nil, nil); err != ErrAlreadyHasRec {
		t.Fatalf("expected ErrAlreadyHasRec, got %v", err)
	}
}

func TestStartPlayingRequiresAnIndex(t *testing.T) {
	s := New("handle-2", nil)
	rec := &recording.Recording{ID: 1}

	if err := s.BeginPreparing(rec, nil, nil); err != nil {
		t.Fatalf("BeginPreparing: %v", err)
	}

	if err := s.StartPlaying(); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState with no index loaded, got %v", err)
	}
}

func TestHangupIsIdempotentAndClosesTransport(t *testing.T) {
	transport := &noopTransport{}
	s := New("handle-3", transport)

	rec := &recording.Recording{ID: 1}
	rec.Ref()
	if err := s.BeginRecording(rec, nil, nil); err != nil {
		t.Fatalf("BeginRecording: %v", err)
	}

	s.Hangup()
	s.Hangup() // must not panic or double-release

	if !transport.closed {
		t.Fatal("expected transport to be closed on hangup")
	}

	if s.State() != Completed {
		t.Fatalf("expected final state Completed, got %v", s.State())
	}

	if !rec.Destroyed() {
		t.Fatal("expected the recording's last ref to be released on hangup")
	}
}

func TestWriteAudioFrameNoopWithoutWriter(t *testing.T) {
	s := New("handle-4", nil)

	if err := s.WriteAudioFrame([]byte("x")); err != nil {
		t.Fatalf("expected nil error with no writer attached, got %v", err)
	}
}
