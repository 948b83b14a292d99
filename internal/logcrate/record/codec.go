// Package record implements the pure, side-effect-free encode/decode of the
// 24-byte record header: a big-endian payload length followed by a 20-byte
// caller-supplied content digest.
package record

import "encoding/binary"

// EncodeHeader encodes a record header for a payload of the given size and
// digest. It requires len(digest) == DigestSize.
func EncodeHeader(payloadSize uint32, digest []byte) ([]byte, error) {
	if len(digest) != DigestSize {
		return nil, &DecodeError{Err: ErrInvalidArgument, Want: DigestSize, Have: len(digest)}
	}
	if payloadSize > MaxPayloadSize {
		return nil, &DecodeError{Err: ErrTooLarge, Want: MaxPayloadSize, Have: int(payloadSize)}
	}

	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[:4], payloadSize)
	copy(buf[4:], digest)
	return buf, nil
}

// DecodeHeader decodes a 24-byte record header from the front of buf. It
// fails with ErrMalformed if buf is shorter than HeaderSize.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &DecodeError{Err: ErrMalformed, Want: HeaderSize, Have: len(buf)}
	}

	h := Header{PayloadSize: binary.BigEndian.Uint32(buf[:4])}
	copy(h.Digest[:], buf[4:HeaderSize])

	if h.PayloadSize > MaxPayloadSize {
		return Header{}, &DecodeError{Err: ErrTooLarge, Want: MaxPayloadSize, Have: int(h.PayloadSize)}
	}
	return h, nil
}

// Encode encodes a full record (header || payload) for the given digest and
// payload. digest must be DigestSize bytes.
func Encode(digest []byte, payload []byte) ([]byte, error) {
	hdr, err := EncodeHeader(uint32(len(payload)), digest) //nolint:gosec
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(hdr)+len(payload))
	copy(buf, hdr)
	copy(buf[len(hdr):], payload)
	return buf, nil
}
