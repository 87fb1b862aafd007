package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
)

// PayloadHeader is the 5-byte prefix of a stored chunk:
//
//	byte 0-3: length (big-endian), counting the compression id and the body
//	byte 4:   compression id (1 = gzip, 2 = zlib)
//
// The compressed body of Length-1 bytes follows directly.
type PayloadHeader struct {
	Length      uint32
	Compression format.CompressionType
}

// ParsePayloadHeader parses the payload prefix at the start of data.
//
// Returns:
//   - errs.ErrInvalidHeaderSize if data is shorter than PayloadHeaderSize
//   - errs.ErrInvalidPayloadLength if the length is zero
//   - errs.ErrUnknownCompression if the compression id is not 1 or 2
func ParsePayloadHeader(data []byte) (PayloadHeader, error) {
	if len(data) < PayloadHeaderSize {
		return PayloadHeader{}, errs.ErrInvalidHeaderSize
	}

	length := binary.BigEndian.Uint32(data[:PayloadLengthSize])
	if length == 0 {
		return PayloadHeader{}, fmt.Errorf("%w: zero length", errs.ErrInvalidPayloadLength)
	}

	compression, err := format.FromID(data[PayloadLengthSize])
	if err != nil {
		return PayloadHeader{}, err
	}

	return PayloadHeader{Length: length, Compression: compression}, nil
}

// BodySize returns the size of the compressed body.
func (h PayloadHeader) BodySize() int {
	return int(h.Length) - 1
}

// FrameSize returns the size of the whole frame, prefix included.
func (h PayloadHeader) FrameSize() int64 {
	return PayloadLengthSize + int64(h.Length)
}

// CheckFits verifies that the frame lies within the allocation of loc.
// A frame may be shorter than its allocation after an in-place overwrite,
// but never longer.
func (h PayloadHeader) CheckFits(loc Location) error {
	if h.FrameSize() > loc.Size {
		return fmt.Errorf("%w: frame of %d bytes exceeds allocation of %d bytes",
			errs.ErrInvalidPayloadLength, h.FrameSize(), loc.Size)
	}

	return nil
}

// FrameSize returns the framed size of a compressed body of bodyLen bytes.
func FrameSize(bodyLen int) int64 {
	return PayloadHeaderSize + int64(bodyLen)
}

// AppendFrame appends the framed payload [length][id][body] to dst.
//
// Returns:
//   - errs.ErrInvalidArgument if compression has no on-disk id
//   - errs.ErrOutOfRange if the frame would not fit in 127 sectors
func AppendFrame(dst []byte, compression format.CompressionType, body []byte) ([]byte, error) {
	id, err := compression.ID()
	if err != nil {
		return dst, err
	}
	if err := CheckFrameSize(FrameSize(len(body))); err != nil {
		return dst, err
	}

	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)+1)) //nolint: gosec
	dst = append(dst, id)
	dst = append(dst, body...)

	return dst, nil
}

// CheckFrameSize reports errs.ErrOutOfRange if a frame of frameSize bytes needs
// more sectors than one location entry can describe.
func CheckFrameSize(frameSize int64) error {
	if frameSize > MaxFrameSize {
		return fmt.Errorf("%w: payload of %d bytes needs %d sectors, limit is %d",
			errs.ErrOutOfRange, frameSize, SectorsFor(frameSize), MaxSectorCount-1)
	}

	return nil
}
