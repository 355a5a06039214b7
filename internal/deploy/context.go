package deploy

import (
	"archive/tar"
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// contextExcludes are path prefixes left out of the image build context.
// Host-side state (sandbox, data, git metadata) never belongs in a layer.
var contextExcludes = []string{
	".git",
	"venv",
	"data",
	".env",
}

// tarDirectory packs dir into an in-memory tar stream suitable as a
// Docker build context.
func tarDirectory(dir string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, exclude := range contextExcludes {
			if rel == exclude || strings.HasPrefix(rel, exclude+"/") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = rel
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

// buildMessage is one JSON line of the daemon's build stream.
type buildMessage struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
}

// decodeBuildStream reads the daemon's line-delimited JSON build output,
// passing human-readable lines to emit and surfacing in-stream errors.
func decodeBuildStream(r io.Reader, emit func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg buildMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return fmt.Errorf("%s", msg.Error)
		}
		if line := strings.TrimSpace(msg.Stream); line != "" {
			emit(line)
		}
	}
	return scanner.Err()
}
