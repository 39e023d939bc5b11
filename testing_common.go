package frogfs

// newTestFilesystem returns a freshly formatted, freshly initialized
// Filesystem over an in-memory medium of the given size with n record
// slots, for use by tests.
func newTestFilesystem(size uint16, n int) (fsys *Filesystem, ms *MemoryStorage) {
	ms = NewMemoryStorage(size)

	fsys, err := NewFilesystem(ms, n)
	if err != nil {
		panic(err)
	}

	if err := fsys.Format(); err != nil {
		panic(err)
	}

	if err := fsys.Init(); err != nil {
		panic(err)
	}

	return fsys, ms
}
