package frogfs

// readAt seeks s to off and reads exactly len(buf) bytes into buf. The core
// never assumes the storage cursor survives across its own operations, so
// every access goes through this helper rather than relying on an implicit
// running position (specification §4.1). Any failure from the adapter
// surfaces uniformly as ErrIO.
func readAt(s Storage, off uint16, buf []byte) (err error) {
	if serr := s.Seek(off); serr != nil {
		return ErrIO
	}

	if serr := s.Read(buf); serr != nil {
		return ErrIO
	}

	return nil
}

// writeAt seeks s to off and writes buf, surfacing any adapter failure as
// ErrIO.
func writeAt(s Storage, off uint16, buf []byte) (err error) {
	if serr := s.Seek(off); serr != nil {
		return ErrIO
	}

	if serr := s.Write(buf); serr != nil {
		return ErrIO
	}

	return nil
}

// scanFreeSpace walks the data area from offset 5 looking for the first
// contiguous run of at least minHole zero bytes that is not itself a
// metadata word (specification §4.3). It reports spaceStart (the offset a
// new primary header should be written at), dataStart (spaceStart+3), and
// dataSize (the number of data bytes usable while reserving room for a
// trailing pointer-fragment).
//
// The scanner is the only piece that must distinguish metadata from free
// space without any external state; it relies exclusively on the invariant
// that a valid metadata word never begins with a zero byte.
func scanFreeSpace(s Storage) (spaceStart, dataStart, dataSize uint16, err error) {
	size, err := s.Size()
	if err != nil {
		return 0, 0, 0, ErrIO
	}

	pos := uint16(superblockSize)

	for pos < size {
		if size-pos < metadataWordSize {
			break
		}

		window := make([]byte, metadataWordSize)

		if err := readAt(s, pos, window); err != nil {
			return 0, 0, 0, err
		}

		if window[0] == 0 {
			runStart := pos
			run := uint16(0)

			p := pos
			for p < size {
				var b [1]byte

				if err := readAt(s, p, b[:]); err != nil {
					return 0, 0, 0, err
				}

				if b[0] != 0 {
					break
				}

				run++
				p++
			}

			if run >= minHole {
				dataSize := run - minHole

				// A single extent's data payload is capped at maxPayload
				// regardless of how much contiguous free space was found;
				// the metadata word's payload field cannot address more,
				// and leaving the remainder unclaimed is harmless — it
				// stays a zero run for the next scan to find.
				if dataSize > maxPayload {
					dataSize = maxPayload
				}

				return runStart, runStart + metadataWordSize, dataSize, nil
			}

			// Hole too small; resume scanning from the non-zero byte (or
			// end of medium) that ended the run.
			pos = p
			continue
		}

		mw, derr := decodeMetadataWord(window)
		if derr != nil {
			return 0, 0, 0, derr
		}

		if mw.payloadKind == payloadKindSize {
			pos += metadataWordSize + mw.payload
		} else {
			pos += metadataWordSize
		}
	}

	return 0, 0, 0, ErrNoSpace
}
