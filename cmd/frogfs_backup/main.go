package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/klauspost/compress/zstd"
)

// rootParameters drives frogfs_backup, a whole-medium maintenance tool
// that snapshots a FrogFS medium file to a compressed archive, or restores
// one back out. Unlike the other cmd/ tools it never parses the FrogFS
// structures on the medium; it operates purely at the byte-region level,
// the same way a flash-image backup utility would.
type rootParameters struct {
	MediumFilepath  string `short:"f" long:"medium-filepath" description:"File-path of the medium" required:"true"`
	ArchiveFilepath string `short:"a" long:"archive-filepath" description:"File-path of the compressed snapshot" required:"true"`
	Snapshot        bool   `long:"snapshot" description:"Write a compressed snapshot of the medium"`
	Restore         bool   `long:"restore" description:"Restore the medium from a compressed snapshot"`
}

var (
	rootArguments = new(rootParameters)
)

func main() {
	defer func() {
		if state := recover(); state != nil {
			err := log.Wrap(state.(error))
			log.PrintError(err)
			os.Exit(-1)
		}
	}()

	p := flags.NewParser(rootArguments, flags.Default)

	_, err := p.Parse()
	if err != nil {
		os.Exit(1)
	}

	if rootArguments.Snapshot == rootArguments.Restore {
		fmt.Fprintf(os.Stderr, "Exactly one of --snapshot or --restore must be given.\n")
		os.Exit(1)
	}

	if rootArguments.Snapshot {
		doSnapshot()
	} else {
		doRestore()
	}
}

func doSnapshot() {
	src, err := os.Open(rootArguments.MediumFilepath)
	log.PanicIf(err)

	defer src.Close()

	info, err := src.Stat()
	log.PanicIf(err)

	dst, err := os.Create(rootArguments.ArchiveFilepath)
	log.PanicIf(err)

	defer dst.Close()

	enc, err := zstd.NewWriter(dst)
	log.PanicIf(err)

	_, err = io.Copy(enc, src)
	log.PanicIf(err)

	err = enc.Close()
	log.PanicIf(err)

	fmt.Printf("Snapshotted %s bytes from (%s) to (%s).\n",
		humanize.Comma(info.Size()), rootArguments.MediumFilepath, rootArguments.ArchiveFilepath)
}

func doRestore() {
	src, err := os.Open(rootArguments.ArchiveFilepath)
	log.PanicIf(err)

	defer src.Close()

	dec, err := zstd.NewReader(src)
	log.PanicIf(err)

	defer dec.Close()

	dst, err := os.Create(rootArguments.MediumFilepath)
	log.PanicIf(err)

	defer dst.Close()

	written, err := io.Copy(dst, dec)
	log.PanicIf(err)

	fmt.Printf("Restored %s bytes from (%s) to (%s).\n",
		humanize.Comma(written), rootArguments.ArchiveFilepath, rootArguments.MediumFilepath)
}
