// Command yaru-recv receives a file from a yaru-send peer, reproducing
// original_source/examples/file_transfer.py's receiver role: it waits
// for a ":name:<filename>" marker, writes subsequent payloads to that
// file, and stops at a closing ":end:" marker.
package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamkroot/yaru"
)

var (
	nameMarker = []byte(":name:")
	endMarker  = []byte(":end:")
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1060", "address to bind and receive on")
	dir := flag.String("dir", "received", "directory to store received files in")
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.WithError(err).Fatal("yaru-recv: create output directory")
	}

	sock := yaru.New(yaru.Config{}, log, nil)
	defer sock.Close()

	if err := sock.Bind(*addr); err != nil {
		log.WithError(err).Fatal("yaru-recv: bind")
	}
	log.WithField("addr", sock.LocalAddr().String()).Info("yaru-recv: bound, waiting for transfer")

	var (
		fileName string
		out      *os.File
		size     int
		start    time.Time
	)

	for {
		data := sock.Read()
		if len(data) == 0 {
			select {
			case <-sock.Readable():
			case <-time.After(time.Second):
			}
			continue
		}

		switch {
		case bytes.HasPrefix(data, nameMarker):
			fileName = string(data[len(nameMarker):])
			f, err := os.Create(filepath.Join(*dir, filepath.Base(fileName)))
			if err != nil {
				log.WithError(err).Fatal("yaru-recv: create output file")
			}
			out = f
			size = 0
			start = time.Now()
			log.WithField("file", fileName).Info("yaru-recv: receiving")

		case bytes.Equal(data, endMarker):
			elapsed := time.Since(start)
			out.Close()
			log.WithField("file", fileName).
				WithField("bytes", size).
				WithField("seconds", elapsed.Seconds()).
				Info("yaru-recv: transfer complete")
			return

		default:
			if out == nil {
				log.Warn("yaru-recv: data received before name marker, dropping")
				continue
			}
			n, err := out.Write(data)
			if err != nil {
				log.WithError(err).Fatal("yaru-recv: write output file")
			}
			size += n
		}
	}
}
