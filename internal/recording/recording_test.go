package recording

import "testing"

type fakeViewer struct{ id string }

func (f fakeViewer) ViewerID() string { return f.id }

func TestRecordingRefCounting(t *testing.T) {
	rec := &Recording{ID: 1}
	rec.Ref()
	rec.Ref()

	if rec.Unref() {
		t.Fatal("expected Unref to not destroy while refs remain")
	}

	if !rec.Unref() {
		t.Fatal("expected final Unref to report destruction")
	}

	if !rec.Destroyed() {
		t.Fatal("expected recording to be marked destroyed")
	}
}

func TestRecordingViewerListIsIdempotent(t *testing.T) {
	rec := &Recording{ID: 1}
	v := fakeViewer{id: "viewer-1"}

	rec.AddViewer(v)
	rec.AddViewer(v)

	if rec.ViewerCount() != 1 {
		t.Fatalf("expected 1 viewer after duplicate add, got %d", rec.ViewerCount())
	}

	rec.RemoveViewer(v)
	rec.RemoveViewer(v)

	if rec.ViewerCount() != 0 {
		t.Fatalf("expected 0 viewers after remove, got %d", rec.ViewerCount())
	}
}

func TestHasAudioHasVideo(t *testing.T) {
	rec := &Recording{AudioFile: "a", VideoFile: ""}

	if !rec.HasAudio() {
		t.Fatal("expected HasAudio true")
	}

	if rec.HasVideo() {
		t.Fatal("expected HasVideo false")
	}
}
