//go:build !linux

package tts

import (
	"encoding/binary"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoPlayer struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
	volume float64
	done   chan struct{}
}

func newPlayer(sampleRate int, volume float64) (player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}

	p := &malgoPlayer{ctx: ctx, volume: volume, done: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = uint32(sampleRate)

	device, err := malgo.InitDevice(ctx.Context, config, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			p.mu.Lock()
			n := copy(out, p.buf)
			p.buf = p.buf[n:]
			drained := p.closed && len(p.buf) == 0
			p.mu.Unlock()
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if drained {
				select {
				case <-p.done:
				default:
					close(p.done)
				}
			}
		},
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, err
	}
	p.device = device
	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return nil, err
	}
	return p, nil
}

func (p *malgoPlayer) write(pcm []byte) {
	if p.volume != 1.0 {
		scaled := make([]byte, len(pcm))
		for i := 0; i+1 < len(pcm); i += 2 {
			s := int16(binary.LittleEndian.Uint16(pcm[i:]))
			binary.LittleEndian.PutUint16(scaled[i:], uint16(scaleSample(s, p.volume)))
		}
		pcm = scaled
	}
	p.mu.Lock()
	p.buf = append(p.buf, pcm...)
	p.mu.Unlock()
}

func (p *malgoPlayer) finish() error {
	p.mu.Lock()
	p.closed = true
	empty := len(p.buf) == 0
	p.mu.Unlock()
	if !empty {
		<-p.done
	}
	p.device.Uninit()
	p.ctx.Uninit()
	p.ctx.Free()
	return nil
}
