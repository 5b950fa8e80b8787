// Package nifti reads the fixed 348-byte NIfTI-1 / Analyze 7.5 header of an
// image volume. Only the header is decoded; voxel data is never read.
package nifti

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"

	"isoresample/internal/models"
)

// HeaderSize is the value of sizeof_hdr in every NIfTI-1 header
const HeaderSize = 348

// ErrBadHeader is returned for anything that is not a readable NIfTI-1 header
var ErrBadHeader = errors.New("invalid NIfTI-1 header")

// Header mirrors the on-disk NIfTI-1 header field for field.
//
// C     Go
// -------------
// int   int32
// float float32
// short int16
// char  byte
type Header struct {
	SizeOfHdr      int32    // Must be 348
	DataTypeUnused [10]byte // Unused
	DBName         [18]byte // Unused
	Extents        int32    // Unused
	SessionError   int16    // Unused
	Regular        byte     // Unused
	DimInfo        byte     // MRI slice ordering

	Dim           [8]int16   // Data array dimensions
	IntentP1      float32    // 1st intent parameter
	IntentP2      float32    // 2nd intent parameter
	IntentP3      float32    // 3rd intent parameter
	IntentCode    int16      // NIFTI_INTENT_* code
	Datatype      int16      // Defines data type
	BitPix        int16      // Number bits/voxel
	SliceStart    int16      // First slice index
	PixDim        [8]float32 // Grid spacing
	VoxOffset     float32    // Offset into .nii file
	SclSlope      float32    // Data scaling: slope
	SclInter      float32    // Data scaling: offset
	SliceEnd      int16      // Last slice index
	SliceCode     byte       // Slice timing order
	XYZTUnits     byte       // Units of pixdim[1..4]
	CalMax        float32    // Max display intensity
	CalMin        float32    // Min display intensity
	SliceDuration float32    // Time for 1 slice
	TOffset       float32    // Time axis shift
	GLMax         int32      // Unused
	GLMin         int32      // Unused

	Descrip [80]byte // Any text
	AuxFile [24]byte // Auxiliary filename

	QFormCode int16 // NIFTI_XFORM_* code
	SFormCode int16 // NIFTI_XFORM_* code

	QuaternB float32 // Quaternion b param
	QuaternC float32 // Quaternion c param
	QuaternD float32 // Quaternion d param
	QOffsetX float32 // Quaternion x shift
	QOffsetY float32 // Quaternion y shift
	QOffsetZ float32 // Quaternion z shift

	SRowX [4]float32 // 1st row affine transform
	SRowY [4]float32 // 2nd row affine transform
	SRowZ [4]float32 // 3rd row affine transform

	IntentName [16]byte // Name or meaning of data
	Magic      [4]byte  // "ni1\0" or "n+1\0"
}

var (
	magicSingle = [4]byte{'n', '+', '1', 0}
	magicPair   = [4]byte{'n', 'i', '1', 0}
)

// ReadHeader opens path and decodes its header. Gzip-compressed files
// (.nii.gz) are detected from their content, not their name.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}
	defer f.Close()

	hdr, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return hdr, nil
}

// Decode reads a header from r, transparently inflating gzip input
func Decode(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)

	lead, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	var src io.Reader = br
	if lead[0] == 0x1f && lead[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrBadHeader, err)
	}

	order, err := byteOrder(buf)
	if err != nil {
		return nil, err
	}

	hdr := &Header{}
	if err := binary.Read(bytes.NewReader(buf), order, hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	if err := hdr.validate(); err != nil {
		return nil, err
	}
	return hdr, nil
}

// byteOrder picks the endianness for which sizeof_hdr reads as 348
func byteOrder(buf []byte) (binary.ByteOrder, error) {
	switch {
	case binary.LittleEndian.Uint32(buf) == HeaderSize:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(buf) == HeaderSize:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: sizeof_hdr is not %d", ErrBadHeader, HeaderSize)
	}
}

func (h *Header) validate() error {
	// Analyze 7.5 headers carry no magic at all
	if h.Magic != magicSingle && h.Magic != magicPair && h.Magic != [4]byte{} {
		return fmt.Errorf("%w: unknown magic %q", ErrBadHeader, h.Magic[:])
	}
	if h.Dim[0] < 1 || h.Dim[0] > 7 {
		return fmt.Errorf("%w: dim[0]=%d out of range 1-7", ErrBadHeader, h.Dim[0])
	}
	return nil
}

// IsNIfTI reports whether the header carries a NIfTI-1 magic (as opposed to plain Analyze)
func (h *Header) IsNIfTI() bool {
	return h.Magic == magicSingle || h.Magic == magicPair
}

// Size returns the first three spatial dimensions; missing dimensions are 1
func (h *Header) Size() [3]int {
	size := [3]int{1, 1, 1}
	for i := 0; i < 3 && i < int(h.Dim[0]); i++ {
		size[i] = int(h.Dim[i+1])
	}
	return size
}

// Spacing returns the voxel size along x, y, z in the file's spatial units
func (h *Header) Spacing() [3]float64 {
	var sp [3]float64
	for i := range sp {
		sp[i] = math.Abs(float64(h.PixDim[i+1]))
	}
	return sp
}

// Volume returns the spatial grid described by the header
func (h *Header) Volume() models.Volume {
	size := h.Size()
	sp := h.Spacing()

	v := models.Volume{Width: size[0], Height: size[1], Depth: size[2]}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = sp[0], sp[1], sp[2]
	return v
}
