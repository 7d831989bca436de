package feedback

import (
	"testing"
	"time"

	"github.com/pion/rtcp"
)

func TestGovernorRembRampUp(t *testing.T) {
	g := NewGovernor(1_000_000)
	now := time.Now()

	var rembCount int
	for i := 0; i < rembRampupSteps; i++ {
		packets := g.OnVideoPacket(1, now)

		found := false
		for _, p := range packets {
			if remb, ok := p.(*rtcp.ReceiverEstimatedMaximumBitrate); ok {
				found = true
				if remb.Bitrate <= 0 {
					t.Fatalf("expected positive ramp-up bitrate, got %f", remb.Bitrate)
				}
			}
		}

		if !found {
			t.Fatalf("expected a REMB packet on ramp-up call %d", i)
		}

		rembCount++
		now = now.Add(time.Millisecond)
	}

	// Immediately after ramp-up exhausts, no REMB until the steady-state
	// interval elapses.
	packets := g.OnVideoPacket(1, now)
	for _, p := range packets {
		if _, ok := p.(*rtcp.ReceiverEstimatedMaximumBitrate); ok {
			t.Fatal("expected no REMB immediately after ramp-up exhausts")
		}
	}
}

func TestGovernorRembSteadyState(t *testing.T) {
	g := NewGovernor(1_000_000)
	g.rembRemaining = 0
	now := time.Now()
	g.rembLast = now

	packets := g.OnVideoPacket(1, now.Add(rembSteadyStateInterval+time.Second))

	found := false
	for _, p := range packets {
		if remb, ok := p.(*rtcp.ReceiverEstimatedMaximumBitrate); ok {
			found = true
			if remb.Bitrate != float32(g.TargetBitrate) {
				t.Fatalf("expected full target bitrate, got %f", remb.Bitrate)
			}
		}
	}

	if !found {
		t.Fatal("expected a steady-state REMB packet")
	}
}

func TestGovernorPLIInterval(t *testing.T) {
	g := NewGovernor(1_000_000)
	g.KeyframeInterval = 10 * time.Second
	now := time.Now()

	// First call only seeds pliLast; no PLI yet.
	packets := g.OnVideoPacket(1, now)
	for _, p := range packets {
		if _, ok := p.(*rtcp.PictureLossIndication); ok {
			t.Fatal("expected no PLI on the seeding call")
		}
	}

	packets = g.OnVideoPacket(1, now.Add(5*time.Second))
	for _, p := range packets {
		if _, ok := p.(*rtcp.PictureLossIndication); ok {
			t.Fatal("expected no PLI before the keyframe interval elapses")
		}
	}

	packets = g.OnVideoPacket(1, now.Add(11*time.Second))
	found := false
	for _, p := range packets {
		if pli, ok := p.(*rtcp.PictureLossIndication); ok {
			found = true
			if pli.MediaSSRC != 1 {
				t.Fatalf("expected MediaSSRC=1, got %d", pli.MediaSSRC)
			}
		}
	}

	if !found {
		t.Fatal("expected a PLI once the keyframe interval elapses")
	}
}
