// Package encoder turns captured PCM blocks into a compact upload format.
package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	// Bytes is the finished file; valid after Close.
	Bytes() []byte
	TotalFrames() uint64
	// Format is the file extension of the output ("wav", "flac").
	Format() string
}

// New returns an encoder for the named format.
func New(format string) (Encoder, error) {
	switch format {
	case "flac":
		return NewFlac()
	case "wav":
		return NewWav(), nil
	default:
		return nil, fmt.Errorf("unknown audio format %q (want wav or flac)", format)
	}
}
