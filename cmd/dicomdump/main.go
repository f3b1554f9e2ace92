// dicomdump prints every header element of a DICOM file, followed by the
// fields that dicomaudit would report for it. Given a sequence folder, it
// dumps the file the audit would pick as representative.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
)

var (
	BufferSize = 4096
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	var path string

	flag.StringVar(&path, "path", "", "Path to a single DICOM file (optionally gzip, bzip2, xz or zip compressed), or to a sequence folder.")
	flag.Parse()

	if path == "" {
		flag.Usage()
		os.Exit(1)
	}

	err := Dump(path)
	STDOUT.Flush()
	if err != nil {
		log.Fatalln(err)
	}
}
