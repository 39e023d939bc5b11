// This package manages the low-level, on-disk record-filesystem
// structures: the superblock, the metadata-word alphabet, the free-space
// scanner, and the extent-chain algorithms that format/init/open/write/
// read/erase/close drive.

package frogfs

// Filesystem is a single FrogFS instance bound to one Storage adapter and
// one in-memory directory. Nothing about it is a process-wide singleton;
// callers may open as many Filesystem values over as many Storage adapters
// as they like (specification §9, "global mutable state" design note).
type Filesystem struct {
	s   Storage
	dir *directory
}

// NewFilesystem returns a Filesystem bound to s with n record slots.
// n must be in [1, 126] (specification §6.3).
func NewFilesystem(s Storage, n int) (fsys *Filesystem, err error) {
	defer catch(&err)

	if s == nil {
		return nil, ErrNullPointer
	}

	if n < 1 || n > maxRecordCount {
		return nil, ErrInvalidRecord
	}

	fsys = &Filesystem{
		s:   s,
		dir: newDirectory(n),
	}

	return fsys, nil
}

// Format zeroes the entire medium and writes a fresh superblock
// (specification §4.5). Every subsequent Init of this medium succeeds and
// reports an empty directory.
func (fsys *Filesystem) Format() (err error) {
	defer catch(&err)

	size, serr := fsys.s.Size()
	if serr != nil {
		return ErrIO
	}

	zero := make([]byte, size)

	if err := writeAt(fsys.s, 0, zero); err != nil {
		return err
	}

	raw, err := encodeSuperblock()
	if err != nil {
		return err
	}

	if err := writeAt(fsys.s, 0, raw); err != nil {
		return err
	}

	fsys.dir.reset()

	return nil
}

// Init performs the boot-time scan (specification §4.4): it clears the
// in-memory directory, validates the superblock, and walks the data area
// recording the first-extent offset of every record it finds.
func (fsys *Filesystem) Init() (err error) {
	defer catch(&err)

	fsys.dir.reset()

	size, serr := fsys.s.Size()
	if serr != nil {
		return ErrIO
	}

	sbRaw := make([]byte, superblockSize)

	if err := readAt(fsys.s, 0, sbRaw); err != nil {
		return err
	}

	if err := decodeSuperblock(sbRaw); err != nil {
		return err
	}

	pos := uint16(superblockSize)

	for pos < size {
		var b [1]byte

		if err := readAt(fsys.s, pos, b[:]); err != nil {
			return err
		}

		if b[0] == 0 {
			pos++
			continue
		}

		if size-pos < metadataWordSize {
			return ErrOutOfRange
		}

		window := make([]byte, metadataWordSize)

		if err := readAt(fsys.s, pos, window); err != nil {
			return err
		}

		mw, derr := decodeMetadataWord(window)
		if derr != nil {
			return derr
		}

		switch {
		case mw.kind == kindNormal && mw.payloadKind == payloadKindSize:
			if !fsys.dir.inRange(mw.index) {
				return ErrOutOfRange
			}

			if fsys.dir.entries[mw.index].exists() {
				return ErrOutOfRange
			}

			fsys.dir.entries[mw.index].offset = pos
			pos += metadataWordSize + mw.payload

		case mw.kind == kindFragment && mw.payloadKind == payloadKindPointer:
			if !(mw.payload > superblockSize && mw.payload < size) {
				return ErrOutOfRange
			}

			pos += metadataWordSize

		case mw.kind == kindFragment && mw.payloadKind == payloadKindSize:
			pos += metadataWordSize + mw.payload

		default:
			return ErrOutOfRange
		}
	}

	return nil
}

// List fills buf (up to its capacity) with the indices of every record
// that currently exists, in index order, and reports the true count
// regardless of truncation (specification §4.10).
func (fsys *Filesystem) List(buf []int) (count int, err error) {
	defer catch(&err)

	return fsys.dir.list(buf), nil
}

// NextAvailable returns the smallest index with no existing record, or
// ErrOutOfRange if every slot is occupied (specification §4.10).
func (fsys *Filesystem) NextAvailable() (r int, err error) {
	defer catch(&err)

	return fsys.dir.nextAvailable()
}

// Open binds record r for read (if it already exists) or allocates its
// first extent and binds it for write (if it does not) (specification
// §4.6).
func (fsys *Filesystem) Open(r int) (err error) {
	defer catch(&err)

	if !fsys.dir.inRange(r) {
		return ErrInvalidRecord
	}

	rs := &fsys.dir.entries[r]

	if rs.exists() {
		rs.writeOffset = 0
		rs.workReg1 = 0
		rs.workReg2 = 0

		return nil
	}

	spaceStart, dataStart, dataSize, serr := scanFreeSpace(fsys.s)
	if serr != nil {
		return serr
	}

	rs.offset = spaceStart
	rs.writeOffset = dataStart
	rs.workReg1 = dataSize
	rs.workReg2 = 0

	mw := metadataWord{
		kind:        kindNormal,
		payloadKind: payloadKindSize,
		index:       r,
		payload:     0,
	}
	raw := encodeMetadataWord(mw)

	if err := writeAt(fsys.s, spaceStart, raw[:]); err != nil {
		return err
	}

	return nil
}

// patchActiveHeader rewrites the metadata word at the head of the extent
// rs is currently writing into, setting its payload to the number of bytes
// durably written so far. The first extent's header is normal+size; every
// later extent's header is fragment+size (specification §4.7, §9).
func (fsys *Filesystem) patchActiveHeader(rs *recordState, r int) (err error) {
	headerOffset := rs.writeOffset - metadataWordSize

	k := kindFragment
	if headerOffset == rs.offset {
		k = kindNormal
	}

	mw := metadataWord{
		kind:        k,
		payloadKind: payloadKindSize,
		index:       r,
		payload:     rs.workReg2,
	}
	raw := encodeMetadataWord(mw)

	return writeAt(fsys.s, headerOffset, raw[:])
}

// Write appends data to record r, which must be open for write
// (specification §4.7). It allocates further extents, chaining them with
// pointer/size fragments, as the current extent fills.
func (fsys *Filesystem) Write(r int, data []byte) (err error) {
	defer catch(&err)

	if !fsys.dir.inRange(r) || len(data) > maxRecordSize {
		return ErrInvalidRecord
	}

	rs := &fsys.dir.entries[r]

	if !rs.openForWrite() {
		return ErrNotWritable
	}

	idx := 0

	for {
		if idx >= len(data) {
			return fsys.patchActiveHeader(rs, r)
		}

		if rs.workReg2 < rs.workReg1 {
			avail := rs.workReg1 - rs.workReg2

			toWrite := uint16(len(data) - idx)
			if toWrite > avail {
				toWrite = avail
			}

			off := rs.writeOffset + rs.workReg2

			if werr := writeAt(fsys.s, off, data[idx:idx+int(toWrite)]); werr != nil {
				fsys.patchActiveHeader(rs, r)
				return werr
			}

			idx += int(toWrite)
			rs.workReg2 += toWrite

			if rs.workReg2 == rs.workReg1 && idx < len(data) {
				if perr := fsys.patchActiveHeader(rs, r); perr != nil {
					return perr
				}
			}

			continue
		}

		// Current extent is full and more input remains: allocate a new
		// extent and chain it behind the one just filled.
		spaceStart, dataStart, dataSize, serr := scanFreeSpace(fsys.s)
		if serr != nil {
			return serr
		}

		// A fragment pointer's payload is an absolute on-media offset, but
		// the field is only 15 bits wide (maxPayload), while the medium
		// itself may be sized up to 65535 (specification §3, §6.3). A
		// free-space hole beyond that reach cannot be chained into without
		// corrupting the pointer word, so treat it the same as no space
		// at all rather than writing a mistyped, wrong-valued word.
		if spaceStart > maxPayload {
			return ErrNoSpace
		}

		ptr := metadataWord{
			kind:        kindFragment,
			payloadKind: payloadKindPointer,
			index:       r,
			payload:     spaceStart,
		}
		ptrRaw := encodeMetadataWord(ptr)

		if err := writeAt(fsys.s, rs.writeOffset+rs.workReg1, ptrRaw[:]); err != nil {
			return err
		}

		szHdr := metadataWord{
			kind:        kindFragment,
			payloadKind: payloadKindSize,
			index:       r,
			payload:     0,
		}
		szRaw := encodeMetadataWord(szHdr)

		if err := writeAt(fsys.s, spaceStart, szRaw[:]); err != nil {
			return err
		}

		rs.writeOffset = dataStart
		rs.workReg1 = dataSize
		rs.workReg2 = 0
	}
}

// traverse drives the shared read/erase state machine (specification
// §4.8). When erasing is false it copies up to n bytes into out, returning
// the number of bytes actually transferred; when erasing is true, out and
// n are ignored and every extent in the chain is walked and zeroed.
func (fsys *Filesystem) traverse(r int, out []byte, n int, erasing bool) (effective int, err error) {
	rs := &fsys.dir.entries[r]
	s := fsys.s

	for {
		switch {
		case rs.workReg1 == 0:
			header := make([]byte, metadataWordSize)

			if err := readAt(s, rs.offset, header); err != nil {
				return effective, err
			}

			mw, derr := decodeMetadataWord(header)
			if derr != nil {
				return effective, derr
			}

			if erasing {
				zero := make([]byte, metadataWordSize)

				if err := writeAt(s, rs.offset, zero); err != nil {
					return effective, err
				}
			}

			rs.workReg1 = rs.offset + metadataWordSize
			rs.workReg2 = mw.payload

		case rs.workReg2 != exhaustedSentinel:
			if erasing {
				zero := make([]byte, rs.workReg2)

				if err := writeAt(s, rs.workReg1, zero); err != nil {
					return effective, err
				}

				rs.workReg1 += rs.workReg2
				effective += int(rs.workReg2)
				rs.workReg2 = 0
			} else {
				remaining := n - effective

				toTransfer := int(rs.workReg2)
				if toTransfer > remaining {
					toTransfer = remaining
				}

				buf := make([]byte, toTransfer)

				if err := readAt(s, rs.workReg1, buf); err != nil {
					return effective, err
				}

				copy(out[effective:effective+toTransfer], buf)

				rs.workReg1 += uint16(toTransfer)
				effective += toTransfer
				rs.workReg2 -= uint16(toTransfer)
			}

			if rs.workReg2 == 0 {
				rs.workReg2 = exhaustedSentinel
			}

		default:
			headerOffset := rs.workReg1

			header := make([]byte, metadataWordSize)

			if err := readAt(s, headerOffset, header); err != nil {
				return effective, err
			}

			mw, derr := decodeMetadataWord(header)
			if derr != nil {
				// A window with a zero index field where a fragment header
				// was expected is free space: the last extent of the chain
				// is followed by free space rather than a pointer fragment.
				// Treat it as a clean chain end rather than an error.
				fsys.finishTraversal(rs, erasing)
				return effective, nil
			}

			if mw.index != r || mw.kind == kindNormal {
				fsys.finishTraversal(rs, erasing)
				return effective, nil
			}

			if erasing {
				zero := make([]byte, metadataWordSize)

				if err := writeAt(s, headerOffset, zero); err != nil {
					return effective, err
				}
			}

			if mw.payloadKind == payloadKindSize {
				rs.workReg1 = headerOffset + metadataWordSize
				rs.workReg2 = mw.payload
			} else {
				rs.workReg1 = mw.payload
				rs.workReg2 = exhaustedSentinel
			}
		}

		if !erasing && effective >= n {
			break
		}
	}

	fsys.finishTraversal(rs, erasing)

	return effective, nil
}

// finishTraversal clears a record's directory entry once erase reaches a
// clean chain end; it is a no-op for read.
func (fsys *Filesystem) finishTraversal(rs *recordState, erasing bool) {
	if erasing {
		rs.offset = 0
		rs.writeOffset = 0
		rs.workReg1 = 0
		rs.workReg2 = 0
	}
}

// Read copies up to len(out) bytes from record r into out (specification
// §4.8). r must be open for read (i.e. not currently open for write).
func (fsys *Filesystem) Read(r int, out []byte) (effective int, err error) {
	defer catch(&err)

	if out == nil {
		return 0, ErrNullPointer
	}

	if !fsys.dir.inRange(r) {
		return 0, ErrInvalidRecord
	}

	rs := &fsys.dir.entries[r]

	if rs.openForWrite() {
		return 0, ErrNotReadable
	}

	if !rs.exists() {
		return 0, ErrInvalidRecord
	}

	return fsys.traverse(r, out, len(out), false)
}

// Erase walks record r's entire extent chain, zeroing both metadata and
// data as it passes, and removes it from the directory (specification
// §4.8).
func (fsys *Filesystem) Erase(r int) (err error) {
	defer catch(&err)

	if !fsys.dir.inRange(r) {
		return ErrInvalidRecord
	}

	rs := &fsys.dir.entries[r]

	if rs.openForWrite() {
		return ErrNotReadable
	}

	if !rs.exists() {
		return ErrInvalidRecord
	}

	_, err = fsys.traverse(r, nil, 0, true)

	return err
}

// Close resets record r's open-state cursors (specification §4.9). It is
// idempotent: closing a record that was opened but never read from or
// written to succeeds.
func (fsys *Filesystem) Close(r int) (err error) {
	defer catch(&err)

	if !fsys.dir.inRange(r) {
		return ErrInvalidRecord
	}

	rs := &fsys.dir.entries[r]

	rs.writeOffset = 0
	rs.workReg1 = 0
	rs.workReg2 = 0

	return nil
}
