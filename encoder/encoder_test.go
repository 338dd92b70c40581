package encoder

import (
	"encoding/binary"
	"math"
	"testing"
)

// sineBlock generates len samples of a 440Hz tone.
func sineBlock(n int) []int16 {
	block := make([]int16, n)
	for i := range block {
		block[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return block
}

func TestNewByFormat(t *testing.T) {
	for _, format := range []string{"wav", "flac"} {
		enc, err := New(format)
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if enc.Format() != format {
			t.Errorf("Format() = %q, want %q", enc.Format(), format)
		}
	}
	if _, err := New("mp3"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWavEncoder(t *testing.T) {
	enc := NewWav()
	block := sineBlock(BlockSize)
	partial := sineBlock(100)

	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := uint64(BlockSize + 100)
	if enc.TotalFrames() != want {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), want)
	}

	out := enc.Bytes()
	if len(out) != wavHeaderSize+int(want)*2 {
		t.Fatalf("output size = %d, want %d", len(out), wavHeaderSize+int(want)*2)
	}
	if string(out[:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(out[24:]); rate != SampleRate {
		t.Errorf("header sample rate = %d, want %d", rate, SampleRate)
	}
	if size := binary.LittleEndian.Uint32(out[40:]); size != uint32(want)*2 {
		t.Errorf("data chunk size = %d, want %d", size, want*2)
	}
	if got := int16(binary.LittleEndian.Uint16(out[wavHeaderSize:])); got != block[0] {
		t.Errorf("first sample = %d, want %d", got, block[0])
	}
}

func TestWavEncoderEmpty(t *testing.T) {
	enc := NewWav()
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out := enc.Bytes()
	if len(out) != wavHeaderSize {
		t.Errorf("empty output size = %d, want header only", len(out))
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
}

func TestFlacEncoder(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var totalFed uint64
	for i := 0; i < 3; i++ {
		block := sineBlock(BlockSize)
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := make([]int16, BlockSize/4)
	for i := range partial {
		partial[i] = int16(i % 1000)
	}

	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != uint64(len(partial)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(partial))
	}
}
