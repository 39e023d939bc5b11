package main

import (
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/jessevdk/go-flags"

	"github.com/frogfs/frogfs"
)

type rootParameters struct {
	Filepath       string `short:"f" long:"filepath" description:"File-path of the medium" required:"true"`
	SizeBytes      uint16 `short:"s" long:"size" description:"Medium size, in bytes" required:"true"`
	RecordCount    int    `short:"n" long:"record-count" description:"Number of record slots" required:"true"`
	Record         int    `short:"r" long:"record" description:"Record index to read"`
	OutputFilepath string `short:"o" long:"output-filepath" description:"File-path to write to ('-' for STDOUT)" required:"true"`
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

	buf := make([]byte, frogfs.MaxRecordSize)

	effective, err := fsys.Read(rootArguments.Record, buf)
	log.PanicIf(err)

	err = fsys.Close(rootArguments.Record)
	log.PanicIf(err)

	var g *os.File

	if rootArguments.OutputFilepath == "-" {
		g = os.Stdout
	} else {
		g, err = os.Create(rootArguments.OutputFilepath)
		log.PanicIf(err)

		defer g.Close()
	}

	_, err = g.Write(buf[:effective])
	log.PanicIf(err)
}
