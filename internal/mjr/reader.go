package mjr

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"
)

// record is one tag+length+payload unit read off disk, with the absolute
// byte offset of its payload (used by the indexer to seek back in for
// playout).
type record struct {
	tag           [tagLength]byte
	payloadOffset int64
	payloadLength uint16
	payload       []byte
}

// Reader walks an MJR file's records in file order. It does not itself
// understand RTP timestamp/sequence ordering — that is the frame indexer's
// job (§4.2); Reader only exposes the raw framing.
type Reader struct {
	file   *os.File
	Header Header
	Legacy bool
}

// Open parses the leading header record (legacy or current) and positions
// the reader to read subsequent RTP records with Next.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{file: file}

	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) readHeader() error {
	rec, err := r.readRecord()
	if err != nil {
		return err
	}

	if rec.tag[0] != 'M' {
		return ErrInvalidHeader
	}

	switch rec.tag[1] {
	case 'E':
		return r.parseLegacyHeader(rec)
	case 'J':
		return r.parseCurrentHeader(rec)
	default:
		return ErrInvalidHeader
	}
}

func (r *Reader) parseLegacyHeader(rec record) error {
	if len(rec.payload) != 5 {
		return ErrInvalidHeader
	}

	r.Legacy = true

	switch rec.payload[0] {
	case 'v':
		r.Header = Header{Kind: Video, Codec: "vp8"}
	case 'a':
		r.Header = Header{Kind: Audio, Codec: "opus"}
	default:
		return ErrInvalidHeader
	}

	return nil
}

func (r *Reader) parseCurrentHeader(rec record) error {
	var info infoHeaderJSON
	if err := json.Unmarshal(rec.payload, &info); err != nil {
		return ErrInvalidJSON
	}

	if info.Type != string(Audio) && info.Type != string(Video) {
		return ErrMissingField
	}

	if info.Codec == "" {
		return ErrMissingField
	}

	if !IsPreferredCodec(info.Codec) {
		return ErrUnsupportedCodec
	}

	r.Header = Header{
		Kind:    MediaKind(info.Type),
		Codec:   info.Codec,
		Created: info.Created,
		Written: info.Written,
	}

	return nil
}

// Next returns the next RTP record in file order, skipping any non-RTP
// side-data records (current-format 'J' tags, or any record shorter than
// minRTPLength) per §4.1. io.EOF is returned once the file is exhausted.
func (r *Reader) Next() (payload []byte, payloadOffset int64, err error) {
	for {
		rec, err := r.readRecord()
		if err != nil {
			return nil, 0, err
		}

		if rec.tag[1] == 'J' || rec.payloadLength < minRTPLength {
			continue
		}

		return rec.payload, rec.payloadOffset, nil
	}
}

// ReadAt reads length bytes of payload starting at the given byte offset,
// such as the payload offset of a frame returned by Next.
func (r *Reader) ReadAt(offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := r.file.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return buf[:n], nil
}

func (r *Reader) readRecord() (record, error) {
	var rec record

	if _, err := io.ReadFull(r.file, rec.tag[:]); err != nil {
		return record{}, err
	}

	var lengthBytes [lengthLength]byte
	if _, err := io.ReadFull(r.file, lengthBytes[:]); err != nil {
		return record{}, err
	}
	rec.payloadLength = binary.BigEndian.Uint16(lengthBytes[:])

	offset, err := r.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return record{}, err
	}
	rec.payloadOffset = offset

	if rec.payloadLength > 0 {
		rec.payload = make([]byte, rec.payloadLength)
		if _, err := io.ReadFull(r.file, rec.payload); err != nil {
			return record{}, err
		}
	}

	return rec, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
