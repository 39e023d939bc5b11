package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/zeebo/xxh3"

	"github.com/frogfs/frogfs"
)

type rootParameters struct {
	Filepath    string `short:"f" long:"filepath" description:"File-path of the medium" required:"true"`
	SizeBytes   uint16 `short:"s" long:"size" description:"Medium size, in bytes" required:"true"`
	RecordCount int    `short:"n" long:"record-count" description:"Number of record slots" required:"true"`
	Verify      bool   `short:"x" long:"verify" description:"Compute an xxh3 content fingerprint for each record"`
	AsJSON      bool   `long:"json" description:"Emit the listing as JSON"`
}

var (
	rootArguments = new(rootParameters)
)

// listEntry is one record's worth of listing detail, rendered either as a
// plain-text line or as one element of the --json array.
type listEntry struct {
	Record int    `json:"record"`
	Size   int    `json:"size"`
	Hash   string `json:"hash,omitempty"`
}

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

	records := make([]int, rootArguments.RecordCount)

	count, err := fsys.List(records)
	log.PanicIf(err)

	records = records[:count]

	entries := make([]listEntry, 0, len(records))

	for _, r := range records {
		err = fsys.Open(r)
		log.PanicIf(err)

		buf := make([]byte, frogfs.MaxRecordSize)

		effective, err := fsys.Read(r, buf)
		log.PanicIf(err)

		err = fsys.Close(r)
		log.PanicIf(err)

		entry := listEntry{
			Record: r,
			Size:   effective,
		}

		if rootArguments.Verify {
			entry.Hash = fmt.Sprintf("%016x", xxh3.Hash(buf[:effective]))
		}

		entries = append(entries, entry)
	}

	if rootArguments.AsJSON {
		raw, err := json.Marshal(entries)
		log.PanicIf(err)

		fmt.Println(string(raw))

		return
	}

	for _, entry := range entries {
		if entry.Hash != "" {
			fmt.Printf("%5d %15s  %s\n", entry.Record, humanize.Comma(int64(entry.Size)), entry.Hash)
		} else {
			fmt.Printf("%5d %15s\n", entry.Record, humanize.Comma(int64(entry.Size)))
		}
	}
}
