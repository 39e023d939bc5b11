package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"

	"github.com/frogfs/frogfs"
)

type rootParameters struct {
	Filepath    string `short:"f" long:"filepath" description:"File-path of the medium to create" required:"true"`
	SizeBytes   uint16 `short:"s" long:"size" description:"Medium size, in bytes" required:"true"`
	RecordCount int    `short:"n" long:"record-count" description:"Number of record slots" required:"true"`
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

	f, err := os.Create(rootArguments.Filepath)
	log.PanicIf(err)

	defer f.Close()

	err = f.Truncate(int64(rootArguments.SizeBytes))
	log.PanicIf(err)

	s := frogfs.NewFileStorage(f, rootArguments.SizeBytes)

	fsys, err := frogfs.NewFilesystem(s, rootArguments.RecordCount)
	log.PanicIf(err)

	err = fsys.Format()
	log.PanicIf(err)

	fmt.Printf("Formatted %s (%s, %d record slots).\n",
		rootArguments.Filepath, humanize.Bytes(uint64(rootArguments.SizeBytes)), rootArguments.RecordCount)
}
