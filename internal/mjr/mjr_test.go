package mjr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mjr")

	w, err := Create(path, Video, "vp8", 1000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	frames := [][]byte{
		{0x80, 0x60, 0x00, 0x01, 0, 0, 0, 1, 0, 0, 0, 1, 'a', 'b'},
		{0x80, 0x60, 0x00, 0x02, 0, 0, 0, 2, 0, 0, 0, 1, 'c', 'd'},
	}

	for _, f := range frames {
		if err := w.SaveFrame(f); err != nil {
			t.Fatalf("SaveFrame: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := w.SaveFrame(frames[0]); err != ErrSealed {
		t.Fatalf("expected ErrSealed after Close, got %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Header.Kind != Video || r.Header.Codec != "vp8" {
		t.Fatalf("unexpected header: %+v", r.Header)
	}

	var got [][]byte
	for {
		payload, _, err := r.Next()
		if err != nil {
			break
		}
		got = append(got, payload)
	}

	if len(got) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(got))
	}

	for i, f := range frames {
		if string(got[i]) != string(f) {
			t.Fatalf("frame %d mismatch: got %v want %v", i, got[i], f)
		}
	}
}

func TestOpenRejectsUnknownTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mjr")

	if err := os.WriteFile(path, []byte("XXXXXXXX\x00\x00"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Open(path); err != ErrInvalidHeader {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestIsPreferredCodec(t *testing.T) {
	if !IsPreferredCodec("opus") {
		t.Fatal("expected opus to be preferred")
	}

	if IsPreferredCodec("made-up-codec") {
		t.Fatal("expected unknown codec to be rejected")
	}
}
