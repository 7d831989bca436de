package indexer

import (
	"path/filepath"
	"testing"

	"github.com/pion/rtp"

	"github.com/auvious/janus-gateway/internal/mjr"
)

func writeRTP(t *testing.T, w *mjr.Writer, seq uint16, ts uint32) {
	t.Helper()

	packet := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           1234,
		},
		Payload: []byte{0xAA, 0xBB},
	}

	raw, err := packet.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if err := w.SaveFrame(raw); err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
}

func TestBuildOrdersInSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mjr")

	w, err := mjr.Create(path, mjr.Video, "vp8", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	writeRTP(t, w, 1, 1000)
	writeRTP(t, w, 2, 2000)
	writeRTP(t, w, 3, 3000)

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if idx.Count != 3 {
		t.Fatalf("expected 3 frames, got %d", idx.Count)
	}

	var seqs []uint16
	for f := idx.Head; f != nil; f = f.Next {
		seqs = append(seqs, f.Seq)
	}

	want := []uint16{1, 2, 3}
	for i, s := range want {
		if seqs[i] != s {
			t.Fatalf("frame %d: got seq %d, want %d", i, seqs[i], s)
		}
	}

	if idx.Tail.Next != nil || idx.Head.Prev != nil {
		t.Fatal("head/tail boundary pointers should be nil")
	}
}

func TestBuildHandlesTimestampReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mjr")

	w, err := mjr.Create(path, mjr.Video, "vp8", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	writeRTP(t, w, 1, 3_000_000_000)
	writeRTP(t, w, 2, 3_000_003_000)
	writeRTP(t, w, 3, 1000) // reset: far smaller than the prior timestamp

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := Build(path)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var seqs []uint16
	for f := idx.Head; f != nil; f = f.Next {
		seqs = append(seqs, f.Seq)
	}

	want := []uint16{1, 2, 3}
	for i, s := range want {
		if seqs[i] != s {
			t.Fatalf("frame %d: got seq %d, want %d (seqs=%v)", i, seqs[i], s, seqs)
		}
	}
}
