package frogfs

import (
	"testing"
)

func formattedMemoryStorage(size uint16) *MemoryStorage {
	ms := NewMemoryStorage(size)

	raw, err := encodeSuperblock()
	if err != nil {
		panic(err)
	}

	if err := writeAt(ms, 0, raw); err != nil {
		panic(err)
	}

	return ms
}

func TestScanFreeSpace_emptyMediumReturnsWholeDataArea(t *testing.T) {
	ms := formattedMemoryStorage(32)

	spaceStart, dataStart, dataSize, err := scanFreeSpace(ms)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if spaceStart != superblockSize {
		t.Fatalf("Space start not correct: (%d)", spaceStart)
	}

	if dataStart != superblockSize+metadataWordSize {
		t.Fatalf("Data start not correct: (%d)", dataStart)
	}

	wantDataSize := uint16(32) - superblockSize - minHole
	if dataSize != wantDataSize {
		t.Fatalf("Data size not correct: (%d) != (%d)", dataSize, wantDataSize)
	}
}

func TestScanFreeSpace_skipsExistingRecordAndFindsHoleAfter(t *testing.T) {
	ms := formattedMemoryStorage(64)

	// Write a record 0 with a 10-byte first extent, occupying
	// [5, 5+3+10) = [5, 18).
	mw := metadataWord{kind: kindNormal, payloadKind: payloadKindSize, index: 0, payload: 10}
	raw := encodeMetadataWord(mw)

	if err := writeAt(ms, superblockSize, raw[:]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	spaceStart, _, _, err := scanFreeSpace(ms)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	wantSpaceStart := uint16(superblockSize) + metadataWordSize + 10
	if spaceStart != wantSpaceStart {
		t.Fatalf("Space start not correct: (%d) != (%d)", spaceStart, wantSpaceStart)
	}
}

func TestScanFreeSpace_holeTooSmallIsSkipped(t *testing.T) {
	ms := formattedMemoryStorage(64)

	// A 5-byte hole right after the superblock is too small to allocate
	// (< minHole). Followed by a record, then a large-enough hole.
	smallHoleStart := uint16(superblockSize)
	recordStart := smallHoleStart + 5

	mw := metadataWord{kind: kindNormal, payloadKind: payloadKindSize, index: 0, payload: 2}
	raw := encodeMetadataWord(mw)

	if err := writeAt(ms, recordStart, raw[:]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	spaceStart, _, _, err := scanFreeSpace(ms)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	wantSpaceStart := recordStart + metadataWordSize + 2
	if spaceStart != wantSpaceStart {
		t.Fatalf("Scanner did not skip the undersized hole: got (%d), want (%d)", spaceStart, wantSpaceStart)
	}
}

func TestScanFreeSpace_noSpaceOnFullMedium(t *testing.T) {
	ms := formattedMemoryStorage(superblockSize + minHole - 1)

	_, _, _, err := scanFreeSpace(ms)
	if err != ErrNoSpace {
		t.Fatalf("Expected ErrNoSpace, got: %v", err)
	}
}
