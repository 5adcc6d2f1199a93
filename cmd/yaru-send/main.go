// Command yaru-send sends a file to a yaru-recv peer, reproducing
// original_source/examples/file_transfer.py's sender role: a
// ":name:<filename>" marker packet, the file contents chunked to
// packet.MaxDataSize, and a closing ":end:" marker.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamkroot/yaru"
	"github.com/iamkroot/yaru/packet"
)

var (
	nameMarker = []byte(":name:")
	endMarker  = []byte(":end:")
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1060", "receiver address")
	file := flag.String("file", "", "path of the file to send")
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	if *file == "" {
		log.Fatal("yaru-send: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.WithError(err).Fatal("yaru-send: read file")
	}
	name := []byte(filepath.Base(*file))

	sock := yaru.New(yaru.Config{}, log, nil)
	defer sock.Close()

	if err := sock.Connect(*addr); err != nil {
		log.WithError(err).Fatal("yaru-send: connect")
	}

	writeBlocking(log, sock, append(append([]byte{}, nameMarker...), name...))

	total := len(data)
	for offset := 0; offset < total; offset += packet.MaxDataSize {
		end := offset + packet.MaxDataSize
		if end > total {
			end = total
		}
		writeBlocking(log, sock, data[offset:end])
	}
	writeBlocking(log, sock, endMarker)

	log.WithField("bytes", total).Info("yaru-send: transfer complete")
}

// writeBlocking retries Write until it succeeds, backing off the way the
// Python reference sleeps a second on ErrSendWindowFull.
func writeBlocking(log *logrus.Entry, sock *yaru.Socket, chunk []byte) {
	for {
		err := sock.Write(chunk)
		if err == nil {
			return
		}
		log.WithError(err).Debug("yaru-send: write backoff")
		time.Sleep(time.Second)
	}
}
