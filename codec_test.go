package frogfs

import (
	"testing"
)

func TestEncodeDecodeMetadataWord_normalSize(t *testing.T) {
	mw := metadataWord{
		kind:        kindNormal,
		payloadKind: payloadKindSize,
		index:       5,
		payload:     1234,
	}

	raw := encodeMetadataWord(mw)

	decoded, err := decodeMetadataWord(raw[:])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded != mw {
		t.Fatalf("Round-trip mismatch: %+v != %+v", decoded, mw)
	}
}

func TestEncodeDecodeMetadataWord_fragmentPointer(t *testing.T) {
	mw := metadataWord{
		kind:        kindFragment,
		payloadKind: payloadKindPointer,
		index:       125,
		payload:     32767,
	}

	raw := encodeMetadataWord(mw)

	decoded, err := decodeMetadataWord(raw[:])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded != mw {
		t.Fatalf("Round-trip mismatch: %+v != %+v", decoded, mw)
	}
}

func TestEncodeMetadataWord_indexZeroNeverProduced(t *testing.T) {
	// Every valid metadata word must have a nonzero first byte (the
	// free-space invariant, specification §3, §5 of the testable
	// properties).
	mw := metadataWord{
		kind:        kindNormal,
		payloadKind: payloadKindSize,
		index:       0,
		payload:     0,
	}

	raw := encodeMetadataWord(mw)

	if raw[0] == 0 {
		t.Fatalf("Encoded index-0 word has a zero first byte: %v", raw)
	}
}

func TestEncodeMetadataWord_payloadAtMaxSucceeds(t *testing.T) {
	mw := metadataWord{
		kind:        kindNormal,
		payloadKind: payloadKindSize,
		index:       0,
		payload:     maxPayload,
	}

	raw := encodeMetadataWord(mw)

	decoded, err := decodeMetadataWord(raw[:])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.payload != maxPayload {
		t.Fatalf("Round-trip at maxPayload mismatch: (%d) != (%d)", decoded.payload, maxPayload)
	}
}

func TestEncodeMetadataWord_payloadOverMaxPanics(t *testing.T) {
	// A payload of maxPayload+1 would set bit 7 of b1, flipping
	// payloadKind and truncating the decoded value — a corrupt word, not a
	// valid one. encodeMetadataWord must refuse to produce it.
	defer func() {
		if recover() == nil {
			t.Fatalf("Expected a panic for a payload beyond the 15-bit field.")
		}
	}()

	mw := metadataWord{
		kind:        kindNormal,
		payloadKind: payloadKindSize,
		index:       0,
		payload:     maxPayload + 1,
	}

	encodeMetadataWord(mw)
}

func TestDecodeMetadataWord_zeroWindowIsOutOfRange(t *testing.T) {
	_, err := decodeMetadataWord([]byte{0, 0, 0})
	if err != ErrOutOfRange {
		t.Fatalf("Expected ErrOutOfRange for an all-zero window, got: %v", err)
	}
}

func TestIsZeroRun(t *testing.T) {
	if !isZeroRun([]byte{0, 0, 0}) {
		t.Fatalf("All-zero window not detected as a zero run.")
	}

	if isZeroRun([]byte{0, 1, 0}) {
		t.Fatalf("Non-zero window incorrectly detected as a zero run.")
	}
}

func TestEncodeDecodeSuperblock(t *testing.T) {
	raw, err := encodeSuperblock()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(raw) != superblockSize {
		t.Fatalf("Superblock not %d bytes: (%d)", superblockSize, len(raw))
	}

	if err := decodeSuperblock(raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
}

func TestDecodeSuperblock_badMagic(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x00, 0x01}

	err := decodeSuperblock(raw)
	if err != ErrNotFormatted {
		t.Fatalf("Expected ErrNotFormatted, got: %v", err)
	}
}
