package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/jessevdk/go-flags"

	"github.com/frogfs/frogfs"
)

type rootParameters struct {
	Filepath      string `short:"f" long:"filepath" description:"File-path of the medium" required:"true"`
	SizeBytes     uint16 `short:"s" long:"size" description:"Medium size, in bytes" required:"true"`
	RecordCount   int    `short:"n" long:"record-count" description:"Number of record slots" required:"true"`
	Record        int    `short:"r" long:"record" description:"Record index to write"`
	InputFilepath string `short:"i" long:"input-filepath" description:"File-path to read the record content from" required:"true"`
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

	data, err := os.ReadFile(rootArguments.InputFilepath)
	log.PanicIf(err)

	f, err := os.OpenFile(rootArguments.Filepath, os.O_RDWR, 0)
	log.PanicIf(err)

	defer f.Close()

	s := frogfs.NewFileStorage(f, rootArguments.SizeBytes)

	fsys, err := frogfs.NewFilesystem(s, rootArguments.RecordCount)
	log.PanicIf(err)

	err = fsys.Init()
	log.PanicIf(err)

	err = fsys.Open(rootArguments.Record)
	log.PanicIf(err)

	err = fsys.Write(rootArguments.Record, data)
	log.PanicIf(err)

	err = fsys.Close(rootArguments.Record)
	log.PanicIf(err)

	err = s.Sync()
	log.PanicIf(err)

	fmt.Printf("(%d) bytes written to record (%d).\n", len(data), rootArguments.Record)
}
