package audio

import (
	"os"
	"sync"
)

const fakeChunkBytes = 2048 // 1024 frames of 16-bit mono

// FakeContext replays a prerecorded clip instead of touching hardware.
type FakeContext struct {
	pcm []byte
}

// NewFakeContext loads a WAV file and strips its header.
func NewFakeContext(wavPath string) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return &FakeContext{pcm: data}, nil
}

// NewFakeContextPCM wraps raw samples directly.
func NewFakeContextPCM(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm}, nil
}

// FakeCapture delivers the whole clip to the callback on Start, in
// device-sized chunks.
type FakeCapture struct {
	pcm []byte

	mu sync.Mutex
	cb DataCallback
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb == nil {
		return nil
	}
	for pos := 0; pos < len(f.pcm); {
		end := min(pos+fakeChunkBytes, len(f.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, f.pcm[pos:end])
		cb(chunk, uint32(len(chunk)/2))
		pos = end
	}
	return nil
}

func (f *FakeCapture) Stop()  {}
func (f *FakeCapture) Close() {}
