package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"remindex/internal/core/mirror"
	"remindex/internal/rmdxd"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:7641", "listen address (tcp)")
	sourceDir := flag.String("source-dir", os.Getenv("REMINDEX_SOURCE_DIR"), "directory holding the source store files")
	indexDir := flag.String("index-dir", "", "directory holding the mirror indexes (default: user cache dir)")
	flag.Parse()

	s, err := rmdxd.NewServer(rmdxd.Options{
		Listen: *listen,
		Mirror: mirror.Config{
			SourceDir: *sourceDir,
			IndexDir:  *indexDir,
		},
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := s.Run(); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			_, _ = fmt.Fprintf(os.Stderr, "listen address in use: %s\nTry: -listen 127.0.0.1:7642\n", *listen)
		} else {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
