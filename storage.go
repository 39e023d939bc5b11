// This package manages the low-level, on-disk storage structures.

package frogfs

import (
	"io"
	"os"

	"github.com/dsoprea/go-logging"
)

// Storage is the byte-addressable position-cursor adapter the core
// operates against (specification §4.1). It is the only external
// collaborator the record engine depends on; an EEPROM driver, an FRAM
// driver, or a plain file can all implement it.
type Storage interface {
	// Size returns the medium's total capacity in bytes.
	Size() (size uint16, err error)

	// Seek sets the cursor to an absolute offset. Fails if off exceeds the
	// last addressable byte.
	Seek(off uint16) (err error)

	// Pos returns the current cursor offset.
	Pos() (off uint16, err error)

	// Advance moves the cursor forward by n bytes.
	Advance(n uint16) (err error)

	// Backtrack moves the cursor backward by n bytes.
	Backtrack(n uint16) (err error)

	// Read reads len(buf) bytes starting at the cursor and advances it.
	Read(buf []byte) (err error)

	// Write writes buf starting at the cursor and advances it.
	Write(buf []byte) (err error)

	// EndOfStorage reports whether the cursor sits on the last addressable
	// byte.
	EndOfStorage() (isEnd bool, err error)

	// Sync flushes any buffered state to the underlying medium.
	Sync() (err error)

	// Close releases any resources held by the adapter.
	Close() (err error)
}

// MemoryStorage is a Storage backed by a plain byte slice. It is the
// adapter used by the test-suite and by anything that wants a FrogFS
// medium entirely in volatile memory.
type MemoryStorage struct {
	data   []byte
	cursor uint16
}

// NewMemoryStorage returns a MemoryStorage of the given size, zero-filled.
func NewMemoryStorage(size uint16) *MemoryStorage {
	return &MemoryStorage{
		data: make([]byte, size),
	}
}

// Bytes exposes the underlying buffer directly, for tests that want to
// inspect on-media layout without going through the Storage interface.
func (ms *MemoryStorage) Bytes() []byte {
	return ms.data
}

func (ms *MemoryStorage) Size() (size uint16, err error) {
	return uint16(len(ms.data)), nil
}

func (ms *MemoryStorage) Seek(off uint16) (err error) {
	defer catch(&err)

	if int(off) >= len(ms.data) {
		log.Panicf("seek offset exceeds medium size: (%d) >= (%d)", off, len(ms.data))
	}

	ms.cursor = off
	return nil
}

func (ms *MemoryStorage) Pos() (off uint16, err error) {
	return ms.cursor, nil
}

func (ms *MemoryStorage) Advance(n uint16) (err error) {
	return ms.Seek(ms.cursor + n)
}

func (ms *MemoryStorage) Backtrack(n uint16) (err error) {
	return ms.Seek(ms.cursor - n)
}

func (ms *MemoryStorage) Read(buf []byte) (err error) {
	defer catch(&err)

	if int(ms.cursor)+len(buf) > len(ms.data) {
		log.Panicf("read past end of medium: cursor=(%d) len=(%d) size=(%d)", ms.cursor, len(buf), len(ms.data))
	}

	copy(buf, ms.data[ms.cursor:int(ms.cursor)+len(buf)])
	ms.cursor += uint16(len(buf))

	return nil
}

func (ms *MemoryStorage) Write(buf []byte) (err error) {
	defer catch(&err)

	if int(ms.cursor)+len(buf) > len(ms.data) {
		log.Panicf("write past end of medium: cursor=(%d) len=(%d) size=(%d)", ms.cursor, len(buf), len(ms.data))
	}

	copy(ms.data[ms.cursor:int(ms.cursor)+len(buf)], buf)
	ms.cursor += uint16(len(buf))

	return nil
}

func (ms *MemoryStorage) EndOfStorage() (isEnd bool, err error) {
	return int(ms.cursor) >= len(ms.data)-1, nil
}

func (ms *MemoryStorage) Sync() (err error) {
	return nil
}

func (ms *MemoryStorage) Close() (err error) {
	return nil
}

// FileStorage is a Storage backed by an *os.File, for a FrogFS medium that
// is a fixed-size region of a real file (the "file-backed simulator"
// collaborator spec.md §1 treats as external).
type FileStorage struct {
	f    *os.File
	size uint16
}

// NewFileStorage wraps f, which must already be exactly size bytes long
// (callers create/truncate it beforehand; FrogFS never resizes the medium
// it is given).
func NewFileStorage(f *os.File, size uint16) *FileStorage {
	return &FileStorage{
		f:    f,
		size: size,
	}
}

func (fs *FileStorage) Size() (size uint16, err error) {
	return fs.size, nil
}

func (fs *FileStorage) Seek(off uint16) (err error) {
	defer catch(&err)

	if off >= fs.size {
		log.Panicf("seek offset exceeds medium size: (%d) >= (%d)", off, fs.size)
	}

	_, err = fs.f.Seek(int64(off), io.SeekStart)
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) Pos() (off uint16, err error) {
	defer catch(&err)

	pos, err := fs.f.Seek(0, io.SeekCurrent)
	log.PanicIf(err)

	return uint16(pos), nil
}

func (fs *FileStorage) Advance(n uint16) (err error) {
	defer catch(&err)

	pos, err := fs.Pos()
	log.PanicIf(err)

	err = fs.Seek(pos + n)
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) Backtrack(n uint16) (err error) {
	defer catch(&err)

	pos, err := fs.Pos()
	log.PanicIf(err)

	err = fs.Seek(pos - n)
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) Read(buf []byte) (err error) {
	defer catch(&err)

	_, err = io.ReadFull(fs.f, buf)
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) Write(buf []byte) (err error) {
	defer catch(&err)

	_, err = fs.f.Write(buf)
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) EndOfStorage() (isEnd bool, err error) {
	defer catch(&err)

	pos, err := fs.Pos()
	log.PanicIf(err)

	return pos >= fs.size-1, nil
}

func (fs *FileStorage) Sync() (err error) {
	defer catch(&err)

	err = fs.f.Sync()
	log.PanicIf(err)

	return nil
}

func (fs *FileStorage) Close() (err error) {
	defer catch(&err)

	err = fs.f.Close()
	log.PanicIf(err)

	return nil
}
