package mjr

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"sync"
)

// Writer appends RTP frame records to a single MJR track file. Opening a
// Writer atomically creates the target file and writes the info header;
// closing flushes and seals it. Writers are independent per track — the
// caller owns one Writer per audio/video file, serialized externally by the
// session's record-mutex (§5).
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	sealed bool
}

// Create opens path for writing, truncating any existing file, and
// immediately emits the info header with the kind and codec populated and
// the creation timestamp set to createdMicros (microseconds since epoch).
func Create(path string, kind MediaKind, codec string, createdMicros int64) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	w := &Writer{file: file}

	header := infoHeaderJSON{
		Type:    string(kind),
		Codec:   codec,
		Created: createdMicros,
		Written: 0,
	}

	payload, err := json.Marshal(header)
	if err != nil {
		file.Close()
		return nil, err
	}

	if err := w.writeRecord(currentTag, payload); err != nil {
		file.Close()
		return nil, err
	}

	return w, nil
}

// SaveFrame appends one RTP packet's raw bytes to the file as a frame record
// tagged legacyTag, so Reader.Next does not mistake it for 'J'-tagged
// side-data. The info header's `u` (first-write time) field is left at 0:
// the header is written once by Create and never rewritten.
func (w *Writer) SaveFrame(rtpPacket []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sealed {
		return ErrSealed
	}

	return w.writeRecord(legacyTag, rtpPacket)
}

func (w *Writer) writeRecord(tag string, payload []byte) error {
	var tagBytes [tagLength]byte
	copy(tagBytes[:], tag)

	if _, err := w.file.Write(tagBytes[:]); err != nil {
		return err
	}

	var lengthBytes [lengthLength]byte
	binary.BigEndian.PutUint16(lengthBytes[:], uint16(len(payload)))

	if _, err := w.file.Write(lengthBytes[:]); err != nil {
		return err
	}

	if len(payload) == 0 {
		return nil
	}

	_, err := w.file.Write(payload)
	return err
}

// Close flushes and seals the writer. A sealed writer rejects further
// frames.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sealed {
		return nil
	}

	w.sealed = true
	return w.file.Close()
}
