package playout

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pion/rtp"

	"github.com/auvious/janus-gateway/internal/indexer"
	"github.com/auvious/janus-gateway/internal/mjr"
)

type collectingSender struct {
	mu      sync.Mutex
	packets []*rtp.Packet
}

func (c *collectingSender) WriteRTP(packet *rtp.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, packet)
	return nil
}

func (c *collectingSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.packets)
}

func writeAudioFrame(t *testing.T, w *mjr.Writer, seq uint16, ts uint32) {
	t.Helper()

	packet := rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: seq, Timestamp: ts, SSRC: 99},
		Payload: []byte{0x01, 0x02},
	}

	raw, err := packet.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if err := w.SaveFrame(raw); err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
}

func TestWorkerSendsEveryIndexedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.mjr")

	w, err := mjr.Create(path, mjr.Audio, "opus", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	writeAudioFrame(t, w, 1, 0)
	writeAudioFrame(t, w, 2, 480)
	writeAudioFrame(t, w, 3, 960)

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := indexer.Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sender := &collectingSender{}
	done := false

	worker, err := NewWorker(path, idx, sender, ClockRateWideband, "", nil, nil, func() bool { return done }, func() { done = true })
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	finished := make(chan struct{})
	go func() {
		worker.Run()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not finish within timeout")
	}

	if sender.count() != 3 {
		t.Fatalf("expected 3 packets sent, got %d", sender.count())
	}
}

func TestNewWorkerRejectsNoTracks(t *testing.T) {
	done := func() bool { return false }

	if _, err := NewWorker("", nil, nil, 0, "", nil, nil, done, nil); err != ErrNoTracks {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
}
