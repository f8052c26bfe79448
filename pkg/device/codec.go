package device

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned when a descriptor encoding is cut off.
var ErrShortBuffer = errors.New("device: truncated descriptor encoding")

// BinaryCodec encodes descriptors as a uvarint ID followed by two
// length-prefixed strings. It satisfies the allocator codec contract
// used for arena hibernation.
type BinaryCodec struct{}

// Append encodes d at the end of dst and returns the extended slice.
func (BinaryCodec) Append(dst []byte, d Descriptor) []byte {
	dst = binary.AppendUvarint(dst, d.ID)
	dst = appendString(dst, d.Address)

	return appendString(dst, d.Path)
}

// Next decodes one descriptor from the head of src and returns the
// remaining bytes.
func (BinaryCodec) Next(src []byte) (Descriptor, []byte, error) {
	id, n := binary.Uvarint(src)
	if n <= 0 {
		return Descriptor{}, nil, ErrShortBuffer
	}

	address, rest, err := nextString(src[n:])
	if err != nil {
		return Descriptor{}, nil, err
	}

	path, rest, err := nextString(rest)
	if err != nil {
		return Descriptor{}, nil, err
	}

	return Descriptor{ID: id, Address: address, Path: path}, rest, nil
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))

	return append(dst, s...)
}

func nextString(src []byte) (string, []byte, error) {
	length, n := binary.Uvarint(src)
	if n <= 0 {
		return "", nil, ErrShortBuffer
	}

	src = src[n:]
	if uint64(len(src)) < length {
		return "", nil, ErrShortBuffer
	}

	return string(src[:length]), src[length:], nil
}
