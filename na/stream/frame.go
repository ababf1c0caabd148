package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	flagFinal      byte = 1 << 0
	flagCompressed byte = 1 << 1
	knownFlags          = flagFinal | flagCompressed
)

// frame is the on-wire container of one sealed chunk.
// Format:
//
//	1 byte: flags
//	4 bytes: payload length (big endian)
//	N bytes: payload
type frame struct {
	flags   byte
	payload []byte
}

func writeFrame(w io.Writer, f frame) error {
	var hdr [5]byte
	hdr[0] = f.flags
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(f.payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(f.payload)
	return err
}

// readFrame reads one frame into buf, growing it if needed. A clean end of
// input before the first byte is reported as io.EOF.
func readFrame(r io.Reader, buf []byte, maxPayload int) (frame, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return frame{}, err
	}
	if hdr[0]&^knownFlags != 0 {
		return frame{}, fmt.Errorf("%w: unknown flags %#x", ErrCorrupt, hdr[0])
	}
	payloadLen := binary.BigEndian.Uint32(hdr[1:])
	if payloadLen > uint32(maxPayload) {
		return frame{}, fmt.Errorf("%w: %d", ErrFrameTooLarge, payloadLen)
	}
	if cap(buf) < int(payloadLen) {
		buf = make([]byte, payloadLen)
	}
	buf = buf[:payloadLen]
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return frame{}, err
	}
	return frame{flags: hdr[0], payload: buf}, nil
}
