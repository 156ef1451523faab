package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/assetstream/internal/hash"
)

// Codec identifies how a container payload is stored.
type Codec uint8

const (
	// CodecRaw stores the payload uncompressed.
	CodecRaw Codec = 0
	// CodecLZ4 stores an LZ4 block (fast, good for hot data).
	CodecLZ4 Codec = 1
	// CodecZstd stores a zstd frame (better ratio, good for cold data).
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecRaw:
		return "raw"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// Header format: [magic 4][codec 1][reserved 3][decoded size uint64 LE][crc32c LE].
// The checksum covers the decoded bytes.
const headerSize = 20

// MaxDecodedSize bounds the decoded size a header may claim.
const MaxDecodedSize = 1 << 30

// Upper bounds on decoded bytes per payload byte. An LZ4 sequence expands to
// at most 255 bytes per encoded byte; zstd RLE blocks go well beyond that.
const (
	lz4MaxRatio  = 255
	zstdMaxRatio = 1 << 16
	ratioSlack   = 64
)

var magic = [4]byte{'A', 'S', 'T', 0x01}

var (
	// ErrNoHeader is returned by ParseHeader when the data does not start
	// with a container header.
	ErrNoHeader = errors.New("loader: no container header")

	// ErrCorrupt is returned when a container payload cannot be decoded.
	ErrCorrupt = errors.New("loader: corrupt container")
)

// Header describes a container.
type Header struct {
	Codec       Codec
	DecodedSize uint64
	Checksum    uint32
}

// ParseHeader reads the container header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headerSize || [4]byte(b[:4]) != magic {
		return Header{}, ErrNoHeader
	}
	h := Header{
		Codec:       Codec(b[4]),
		DecodedSize: binary.LittleEndian.Uint64(b[8:]),
		Checksum:    binary.LittleEndian.Uint32(b[16:]),
	}
	if h.Codec > CodecZstd {
		return Header{}, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, b[4])
	}
	if h.DecodedSize > MaxDecodedSize {
		return Header{}, fmt.Errorf("%w: decoded size %d too large", ErrCorrupt, h.DecodedSize)
	}
	return h, nil
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	return dec
}

// Encode wraps data in a container using codec.
func Encode(codec Codec, data []byte) ([]byte, error) {
	var payload []byte
	switch codec {
	case CodecRaw:
		payload = data
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible; lz4 signals this with a zero length.
			return Encode(CodecRaw, data)
		}
		payload = buf[:n]
	case CodecZstd:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("loader: unknown codec %d", codec)
	}

	out := make([]byte, headerSize+len(payload))
	copy(out, magic[:])
	out[4] = byte(codec)
	binary.LittleEndian.PutUint64(out[8:], uint64(len(data)))
	binary.LittleEndian.PutUint32(out[16:], hash.CRC32C(data))
	copy(out[headerSize:], payload)
	return out, nil
}

// Decode returns the decoded payload of a container. Data without a header
// is returned unchanged.
func Decode(b []byte) ([]byte, error) {
	h, err := ParseHeader(b)
	if errors.Is(err, ErrNoHeader) {
		return b, nil
	}
	if err != nil {
		return nil, err
	}

	out, err := decodePayload(h, b[headerSize:])
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) != h.DecodedSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, header says %d", ErrCorrupt, len(out), h.DecodedSize)
	}
	if err := hash.Verify(out, h.Checksum); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return out, nil
}

// checkBounds rejects headers whose decoded size cannot come from a payload
// of payloadLen bytes, before anything is allocated for it.
func checkBounds(h Header, payloadLen int64) error {
	if payloadLen < 0 {
		return fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	n := uint64(payloadLen)
	var limit uint64
	switch h.Codec {
	case CodecRaw:
		limit = n
	case CodecLZ4:
		limit = n*lz4MaxRatio + ratioSlack
	default:
		limit = n*zstdMaxRatio + ratioSlack
	}
	if h.DecodedSize > limit {
		return fmt.Errorf("%w: %s payload of %d bytes cannot decode to %d bytes", ErrCorrupt, h.Codec, payloadLen, h.DecodedSize)
	}
	return nil
}

func decodePayload(h Header, payload []byte) ([]byte, error) {
	if err := checkBounds(h, int64(len(payload))); err != nil {
		return nil, err
	}

	switch h.Codec {
	case CodecRaw:
		return payload, nil

	case CodecLZ4:
		out := make([]byte, h.DecodedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return out[:n], nil

	default:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, h.DecodedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return out, nil
	}
}
