package frogfs

import (
	"encoding/binary"

	"github.com/dsoprea/go-logging"
	"github.com/go-restruct/restruct"
)

// defaultEncoding is the byte order used for every multi-byte field on the
// medium.
var defaultEncoding = binary.LittleEndian

const (
	// superblockMagic is the little-endian-encoded magic identifying a
	// formatted medium (specification §6.1).
	superblockMagic = uint32(0x534c5966)

	// superblockVersion is the only format version this package writes or
	// accepts.
	superblockVersion = uint8(1)

	// superblockSize is the fixed size, in bytes, of the superblock.
	superblockSize = 5

	// metadataWordSize is the fixed size, in bytes, of one metadata word.
	metadataWordSize = 3

	// minHole is the minimum zero-byte run length that the free-space
	// scanner will allocate (3 bytes of primary header + >=1 data byte + 3
	// bytes reserved for a trailing pointer fragment).
	minHole = 7

	// maxRecordSize bounds the size of a single write() call.
	maxRecordSize = 32 * 1024

	// MaxRecordSize is maxRecordSize exported for callers (notably the
	// cmd/ tools) that need to size a read buffer large enough for any
	// record without guessing.
	MaxRecordSize = maxRecordSize

	// maxRecordCount bounds N, the configured number of record slots.
	maxRecordCount = 126

	// maxPayload is the largest value a metadata word's 15-bit payload
	// field can hold (specification §4.2). Both data/size payloads and
	// pointer payloads (which carry an absolute on-media offset) are bound
	// by this, not by maxRecordSize or the medium's size() — a single
	// extent can therefore never carry more than maxPayload data bytes,
	// and a fragment pointer can never target an offset beyond it.
	maxPayload = uint16(32767)
)

// kind distinguishes a metadata word that begins a record's first extent
// from one that belongs to a later fragment.
type kind uint8

const (
	kindNormal   kind = 0
	kindFragment kind = 1
)

// payloadKind distinguishes whether a metadata word's payload is a forward
// pointer to the next extent or a data/length field.
type payloadKind uint8

const (
	payloadKindPointer payloadKind = 0
	payloadKindSize    payloadKind = 1
)

// metadataWord is the decoded form of the three-byte metadata alphabet
// shared by every extent header and pointer fragment (specification §3).
type metadataWord struct {
	kind        kind
	payloadKind payloadKind
	index       int
	payload     uint16
}

// superblock is the fixed 5-byte prefix identifying a formatted medium.
type superblock struct {
	Magic   uint32
	Version uint8
}

// encodeSuperblock returns the 5-byte on-media representation of a freshly
// formatted medium.
func encodeSuperblock() (raw []byte, err error) {
	defer catch(&err)

	sb := superblock{
		Magic:   superblockMagic,
		Version: superblockVersion,
	}

	raw, err = restruct.Pack(defaultEncoding, &sb)
	log.PanicIf(err)

	return raw, nil
}

// decodeSuperblock validates the 5-byte prefix read from a medium,
// returning ErrNotFormatted if the magic or version do not match.
func decodeSuperblock(raw []byte) (err error) {
	defer catch(&err)

	if len(raw) != superblockSize {
		log.Panicf("superblock read must be exactly (%d) bytes, got (%d)", superblockSize, len(raw))
	}

	var sb superblock

	err = restruct.Unpack(raw, defaultEncoding, &sb)
	log.PanicIf(err)

	if sb.Magic != superblockMagic || sb.Version != superblockVersion {
		return ErrNotFormatted
	}

	return nil
}

// encodeMetadataWord packs mw into its 3-byte on-media form. The caller is
// responsible for keeping index in [0, 126]; payload is checked here
// because most call sites' payload is derived from a free-space scan or a
// running write offset, not a compile-time constant, so a bug upstream (an
// uncapped extent fill, an offset beyond the 15-bit field) must not be
// allowed to silently corrupt the on-media word by flipping payloadKind.
func encodeMetadataWord(mw metadataWord) (raw [metadataWordSize]byte) {
	if mw.payload > maxPayload {
		log.Panicf("metadata word payload out of range: (%d) > (%d)", mw.payload, maxPayload)
	}

	indexField := byte(mw.index + 1)

	b0 := byte(mw.kind)<<7 | indexField
	b1 := byte(mw.payloadKind)<<7 | byte(mw.payload>>8)
	b2 := byte(mw.payload)

	raw[0] = b0
	raw[1] = b1
	raw[2] = b2

	return raw
}

// decodeMetadataWord unpacks a 3-byte window into a metadataWord. A window
// whose index field is zero (which includes an all-zero window of free
// space) cannot be a valid word and is rejected with ErrOutOfRange; the
// kind/payloadKind combination is not validated here.
func decodeMetadataWord(raw []byte) (mw metadataWord, err error) {
	defer catch(&err)

	if len(raw) != metadataWordSize {
		log.Panicf("metadata word must be exactly (%d) bytes, got (%d)", metadataWordSize, len(raw))
	}

	b0, b1, b2 := raw[0], raw[1], raw[2]

	indexField := b0 & 0x7f
	if indexField == 0 {
		return metadataWord{}, ErrOutOfRange
	}

	mw = metadataWord{
		kind:        kind(b0 >> 7),
		payloadKind: payloadKind(b1 >> 7),
		index:       int(indexField) - 1,
		payload:     uint16(b1&0x7f)<<8 | uint16(b2),
	}

	return mw, nil
}

// isZeroRun reports whether every byte in raw is zero, which per the
// free-space invariant (specification §3) means the window cannot be a
// valid metadata word.
func isZeroRun(raw []byte) bool {
	for _, b := range raw {
		if b != 0 {
			return false
		}
	}

	return true
}
