package protocol

import "testing"

func TestNewErrorDefaultsMessage(t *testing.T) {
	err := NewError(InvalidSdp, "")
	if err.Message != "invalid-sdp" {
		t.Fatalf("expected default message, got %q", err.Message)
	}

	err = NewError(InvalidSdp, "custom")
	if err.Message != "custom" {
		t.Fatalf("expected custom message to survive, got %q", err.Message)
	}
}

func TestErrResponseShape(t *testing.T) {
	resp := ErrResponse(NewError(NotFound, "no such recording"))

	if resp.Recordplay != "event" {
		t.Fatalf("expected recordplay=event, got %q", resp.Recordplay)
	}

	if resp.ErrorCode != NotFound {
		t.Fatalf("expected error code %d, got %d", NotFound, resp.ErrorCode)
	}

	if resp.Result != nil {
		t.Fatal("expected no result on an error response")
	}
}

func TestEventCarriesResult(t *testing.T) {
	resp := Event(Result{Status: "recording", ID: 42})

	if resp.Recordplay != "event" {
		t.Fatalf("expected recordplay=event, got %q", resp.Recordplay)
	}

	if resp.Result == nil || resp.Result.ID != 42 {
		t.Fatalf("expected result.id=42, got %+v", resp.Result)
	}
}

func TestRequestHandleRoundTrip(t *testing.T) {
	var req Request
	req.SetHandle("abc-123")

	if req.Handle() != "abc-123" {
		t.Fatalf("expected handle %q, got %q", "abc-123", req.Handle())
	}
}

func TestCodeString(t *testing.T) {
	cases := map[Code]string{
		NoMessage:        "no-message",
		InvalidRecording: "invalid-recording",
		Unknown:          "unknown",
	}

	for code, want := range cases {
		if got := code.String(); got != want {
			t.Fatalf("Code(%d).String() = %q, want %q", code, got, want)
		}
	}
}
