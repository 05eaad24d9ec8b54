package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Info describes the audio parameters of a RIFF/WAVE file.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataBytes     int64
}

// DurationSeconds computes the playback duration from the data chunk size.
func (i Info) DurationSeconds() float64 {
	bytesPerSecond := i.SampleRate * i.Channels * i.BitsPerSample / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	return float64(i.DataBytes) / float64(bytesPerSecond)
}

// ReadInfo parses the RIFF header and chunk list of a WAVE stream.
func ReadInfo(r io.ReadSeeker) (Info, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Info{}, fmt.Errorf("read riff header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Info{}, errors.New("not a RIFF/WAVE stream")
	}

	var (
		info    Info
		haveFmt bool
	)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Info{}, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return Info{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			info.Channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
			haveFmt = true
			if size > 16 {
				if _, err := r.Seek(size-16, io.SeekCurrent); err != nil {
					return Info{}, fmt.Errorf("skip fmt extension: %w", err)
				}
			}
		case "data":
			info.DataBytes = size
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip data chunk: %w", err)
			}
		default:
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
		// Chunks are word aligned.
		if size%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip padding: %w", err)
			}
		}
	}

	if !haveFmt {
		return Info{}, errors.New("missing fmt chunk")
	}
	if info.DataBytes == 0 {
		return Info{}, errors.New("missing data chunk")
	}
	return info, nil
}

// FileDuration opens path and returns its playback duration in seconds.
func FileDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	info, err := ReadInfo(f)
	if err != nil {
		return 0, fmt.Errorf("parse wav %s: %w", path, err)
	}
	return info.DurationSeconds(), nil
}
