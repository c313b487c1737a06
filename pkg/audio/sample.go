// Package audio writes and inspects PCM WAV files used for smoke tests of the pipeline.
package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	maxSample16   = 32767
	writeChunkLen = 4096
)

// ToneOptions describes a mono sine tone.
type ToneOptions struct {
	Seconds    float64
	Frequency  float64
	SampleRate int
	Amplitude  float64 // 0..1, 0 means 0.5
}

// DefaultToneOptions is a five second 440Hz tone at 16kHz.
func DefaultToneOptions() ToneOptions {
	return ToneOptions{
		Seconds:    5,
		Frequency:  440,
		SampleRate: 16000,
		Amplitude:  0.5,
	}
}

// WriteTone encodes a 16-bit mono sine tone into w.
func WriteTone(w io.WriteSeeker, opts ToneOptions) error {
	if opts.Seconds <= 0 {
		return fmt.Errorf("tone length must be positive, got %v", opts.Seconds)
	}
	if opts.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", opts.SampleRate)
	}
	amplitude := opts.Amplitude
	if amplitude <= 0 || amplitude > 1 {
		amplitude = 0.5
	}

	enc := wav.NewEncoder(w, opts.SampleRate, bitDepth, 1, pcmFormat)
	format := &goaudio.Format{NumChannels: 1, SampleRate: opts.SampleRate}

	total := int(opts.Seconds * float64(opts.SampleRate))
	data := make([]int, 0, writeChunkLen)
	for n := 0; n < total; n++ {
		t := float64(n) / float64(opts.SampleRate)
		sample := amplitude * math.Sin(2*math.Pi*opts.Frequency*t)
		data = append(data, int(sample*maxSample16))

		if len(data) == writeChunkLen || n == total-1 {
			buf := &goaudio.IntBuffer{Format: format, Data: data, SourceBitDepth: bitDepth}
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("encoding samples: %w", err)
			}
			data = data[:0]
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteToneFile writes a tone to path, creating parent directories.
func WriteToneFile(path string, opts ToneOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTone(f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Info is the header summary of a WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Inspect decodes the header of the WAV file at path.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("%s is not a valid wav file", path)
	}
	duration, err := dec.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("reading duration: %w", err)
	}
	return Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   duration,
	}, nil
}
