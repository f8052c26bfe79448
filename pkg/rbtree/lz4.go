package rbtree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrTruncatedBlock is returned when a compressed block is shorter than its header claims.
var ErrTruncatedBlock = errors.New("truncated compressed block")

// ErrUnknownBlockKind is returned when a compressed block carries an unknown marker byte.
var ErrUnknownBlockKind = errors.New("unknown compressed block kind")

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// Block marker bytes. Blocks that LZ4 cannot shrink are stored raw so
// that decompression never depends on the data being compressible.
const (
	rawBlock = 0x0
	lz4Block = 0x1
)

// CompressUInt32Slice compresses a slice of uint32-s with LZ4.
func CompressUInt32Slice(data []uint32) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	return CompressByteSlice(buf.Bytes())
}

// DecompressUInt32Slice decompresses a slice of uint32-s previously compressed with LZ4.
// `result` must be preallocated to the original length.
func DecompressUInt32Slice(data []byte, result []uint32) error {
	decompressed := make([]byte, len(result)*uint32ByteSize)

	err := DecompressByteSlice(data, decompressed)
	if err != nil {
		return err
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return fmt.Errorf("decode uint32 block: %w", readErr)
	}

	return nil
}

// CompressByteSlice compresses a byte slice with LZ4 behind a one-byte
// marker. Incompressible input is stored raw.
func CompressByteSlice(data []byte) []byte {
	compressed := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, compressed[1:], nil)
	if err != nil || written == 0 || written >= len(data) {
		raw := make([]byte, 1+len(data))
		raw[0] = rawBlock
		copy(raw[1:], data)

		return raw
	}

	compressed[0] = lz4Block

	return compressed[:1+written]
}

// DecompressByteSlice reverses CompressByteSlice. `result` must be
// preallocated to the original length.
func DecompressByteSlice(data []byte, result []byte) error {
	if len(data) == 0 {
		return ErrTruncatedBlock
	}

	switch data[0] {
	case rawBlock:
		if len(data)-1 != len(result) {
			return fmt.Errorf("%w: %d raw bytes for %d", ErrTruncatedBlock, len(data)-1, len(result))
		}

		copy(result, data[1:])

		return nil
	case lz4Block:
		_, err := lz4.UncompressBlock(data[1:], result)
		if err != nil {
			return fmt.Errorf("lz4 block: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: 0x%x", ErrUnknownBlockKind, data[0])
	}
}

// DeltaEncodeUInt32Slice replaces each element with the difference from its
// predecessor, in place. The first element is left unchanged. This transforms
// sorted sequences into small, repetitive values that compress better with LZ4.
func DeltaEncodeUInt32Slice(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// DeltaDecodeUInt32Slice performs a prefix-sum to restore original values from
// deltas produced by DeltaEncodeUInt32Slice. The operation is performed in place.
func DeltaDecodeUInt32Slice(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
