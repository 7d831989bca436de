// Package feedback implements the REMB/PLI governor described in §4.7:
// piggybacked on inbound video RTP, not a background ticker, grounded on
// the original plugin's monotonic-clock checks inside its RTP callback.
package feedback

import (
	"time"

	"github.com/pion/rtcp"
)

const (
	rembRampupSteps         = 4
	rembSteadyStateInterval = 5 * time.Second
	defaultKeyframeInterval = 15 * time.Second
)

// Governor tracks one recording session's video feedback pacing state.
// Mutation happens only from the RTP-receive path, so no lock is needed —
// matching the original's single-threaded-per-callback assumption.
type Governor struct {
	TargetBitrate    uint64
	KeyframeInterval time.Duration

	rembRemaining int
	rembLast      time.Time

	pliLast time.Time
}

// NewGovernor constructs a governor with the default ramp-up budget and
// keyframe interval (§4.7).
func NewGovernor(targetBitrate uint64) *Governor {
	return &Governor{
		TargetBitrate:    targetBitrate,
		KeyframeInterval: defaultKeyframeInterval,
		rembRemaining:    rembRampupSteps,
	}
}

// OnVideoPacket is called once per inbound video RTP packet on a recording
// session (§4.7) and returns any feedback packets due to be sent now.
func (g *Governor) OnVideoPacket(ssrc uint32, now time.Time) []rtcp.Packet {
	var out []rtcp.Packet

	if remb := g.maybeREMB(ssrc, now); remb != nil {
		out = append(out, remb)
	}

	if pli := g.maybePLI(ssrc, now); pli != nil {
		out = append(out, pli)
	}

	return out
}

func (g *Governor) maybeREMB(ssrc uint32, now time.Time) rtcp.Packet {
	if g.rembRemaining > 0 {
		bitrate := g.TargetBitrate / uint64(g.rembRemaining)
		g.rembRemaining--
		g.rembLast = now
		return &rtcp.ReceiverEstimatedMaximumBitrate{
			Bitrate: float32(bitrate),
			SSRCs:   []uint32{ssrc},
		}
	}

	if now.Sub(g.rembLast) >= rembSteadyStateInterval {
		g.rembLast = now
		return &rtcp.ReceiverEstimatedMaximumBitrate{
			Bitrate: float32(g.TargetBitrate),
			SSRCs:   []uint32{ssrc},
		}
	}

	return nil
}

func (g *Governor) maybePLI(ssrc uint32, now time.Time) rtcp.Packet {
	interval := g.KeyframeInterval
	if interval <= 0 {
		interval = defaultKeyframeInterval
	}

	if g.pliLast.IsZero() {
		g.pliLast = now
		return nil
	}

	if now.Sub(g.pliLast) < interval {
		return nil
	}

	g.pliLast = now
	return &rtcp.PictureLossIndication{MediaSSRC: ssrc}
}
