// Package indexer builds the ordered, doubly-linked frame list described in
// §4.2: a two-pass walk over an MJR file that reconstructs the original
// temporal order of RTP packets even across timestamp resets and
// sequence-number wraps.
package indexer

import (
	"github.com/auvious/janus-gateway/internal/mjr"
	"github.com/pion/rtp"
)

const (
	resetThreshold   = 2 * 1000 * 1000 * 1000 // 2e9, §4.2 pass 1
	preResetMargin   = 1000 * 1000            // 1e6, §4.2 pass 1
	wrapThreshold    = 10000                  // §4.2 pass 2 tie-break
	extendedTsOffset = uint64(1) << 32
)

// Frame is one in-memory index entry (§3: "Frame record").
type Frame struct {
	Seq     uint16
	ExtTS   uint64
	Length  int
	Offset  int64
	Prev    *Frame
	Next    *Frame
	fileSeq int // tie-break on identical (ExtTS, seq): preserves file order
}

// Index is the doubly-linked, timestamp-sorted list produced by Build. Head
// has the smallest logical time; iterating Next from Head reproduces the
// original send order.
type Index struct {
	Head  *Frame
	Tail  *Frame
	Count int
}

// Build reads path twice — once to detect a timestamp reset, once to place
// every RTP packet into temporal order — and returns the resulting list.
func Build(path string) (*Index, error) {
	resetAt, firstTS, err := detectReset(path)
	if err != nil {
		return nil, err
	}

	return buildOrderedList(path, resetAt, firstTS)
}

// detectReset is pass 1 (§4.2): walk every RTP record in file order, track
// the previously observed timestamp, and record the first packet whose
// timestamp goes backward by more than resetThreshold as the reset point.
// After that, any packet with a smaller timestamp lowers the reset value.
// Smaller backward jumps are out-of-order packets, not resets.
func detectReset(path string) (resetAt uint32, firstTS uint32, err error) {
	reader, err := mjr.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	var lastTS uint32
	haveLast := false
	var header rtp.Header

	for {
		payload, _, readErr := reader.Next()
		if readErr != nil {
			break
		}

		if _, err := header.Unmarshal(payload); err != nil {
			continue
		}

		ts := header.Timestamp

		if !haveLast {
			firstTS = ts
			if firstTS > preResetMargin {
				firstTS -= preResetMargin
			}
			haveLast = true
			lastTS = ts
			continue
		}

		if resetAt == 0 {
			if ts < lastTS && uint64(lastTS)-uint64(ts) > resetThreshold {
				resetAt = ts
			}
		} else if ts < resetAt {
			resetAt = ts
		}

		lastTS = ts
	}

	return resetAt, firstTS, nil
}

// buildOrderedList is pass 2 (§4.2): compute each packet's extended
// timestamp, then insert it into the ordered list by walking backward from
// the tail.
func buildOrderedList(path string, resetAt uint32, firstTS uint32) (*Index, error) {
	reader, err := mjr.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	idx := &Index{}
	var header rtp.Header
	fileSeq := 0

	for {
		payload, offset, readErr := reader.Next()
		if readErr != nil {
			break
		}

		if _, err := header.Unmarshal(payload); err != nil {
			continue
		}

		extTS := extendedTimestamp(header.Timestamp, resetAt, firstTS)

		frame := &Frame{
			Seq:     header.SequenceNumber,
			ExtTS:   extTS,
			Length:  len(payload),
			Offset:  offset,
			fileSeq: fileSeq,
		}
		fileSeq++

		idx.insert(frame)
	}

	return idx, nil
}

func extendedTimestamp(raw uint32, resetAt uint32, firstTS uint32) uint64 {
	if resetAt == 0 {
		return uint64(raw)
	}

	if raw > firstTS {
		// Pre-reset.
		return uint64(raw)
	}

	// Post-reset: placed after every pre-reset packet.
	return uint64(raw) + extendedTsOffset
}

// insert walks backward from the tail and places frame at the correct
// position, per §4.2's ordering and wrap-aware sequence tie-break.
func (idx *Index) insert(frame *Frame) {
	idx.Count++

	if idx.Tail == nil {
		idx.Head = frame
		idx.Tail = frame
		return
	}

	candidate := idx.Tail
	for candidate != nil {
		if candidate.ExtTS < frame.ExtTS {
			idx.insertAfter(candidate, frame)
			return
		}

		if candidate.ExtTS == frame.ExtTS {
			if sequenceAfter(candidate.Seq, frame.Seq) {
				idx.insertAfter(candidate, frame)
				return
			}

			if candidate.Seq == frame.Seq && candidate.fileSeq < frame.fileSeq {
				idx.insertAfter(candidate, frame)
				return
			}
		}

		candidate = candidate.Prev
	}

	// Reached the head without inserting: prepend.
	frame.Next = idx.Head
	idx.Head.Prev = frame
	idx.Head = frame
}

func (idx *Index) insertAfter(candidate, frame *Frame) {
	frame.Prev = candidate
	frame.Next = candidate.Next

	if candidate.Next != nil {
		candidate.Next.Prev = frame
	} else {
		idx.Tail = frame
	}

	candidate.Next = frame
}

// sequenceAfter reports whether new is "after" candidate under §4.2's
// wrap-aware sequence ordering: candidate.seq < new.seq and the gap is
// small, or candidate.seq > new.seq and the gap is large (wrap).
func sequenceAfter(candidateSeq, newSeq uint16) bool {
	diff := abs16(int(candidateSeq) - int(newSeq))

	if candidateSeq < newSeq && diff < wrapThreshold {
		return true
	}

	if candidateSeq > newSeq && diff > wrapThreshold {
		return true
	}

	return false
}

func abs16(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
