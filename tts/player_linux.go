//go:build linux

package tts

import (
	"encoding/binary"
	"sync"

	"github.com/jfreymuth/pulse"
)

type pulsePlayer struct {
	client *pulse.Client
	stream *pulse.PlaybackStream

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []int16
	closed bool
	volume float64
}

func newPlayer(sampleRate int, volume float64) (player, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, err
	}
	p := &pulsePlayer{client: c, volume: volume}
	p.cond = sync.NewCond(&p.mu)

	reader := pulse.Int16Reader(func(out []int16) (int, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		for len(p.buf) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.buf) == 0 {
			return 0, pulse.EndOfData
		}
		n := copy(out, p.buf)
		p.buf = p.buf[n:]
		return n, nil
	})

	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	p.stream = stream
	stream.Start()
	return p, nil
}

func (p *pulsePlayer) write(pcm []byte) {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = scaleSample(s, p.volume)
	}
	p.mu.Lock()
	p.buf = append(p.buf, samples...)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *pulsePlayer) finish() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	p.stream.Drain()
	err := p.stream.Error()
	p.stream.Stop()
	p.stream.Close()
	p.client.Close()
	return err
}
