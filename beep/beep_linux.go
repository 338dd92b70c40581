//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
)

var (
	startSamples []int16
	endSamples   []int16
	errorSamples []int16
	soundOnce    sync.Once
)

func initSound() {
	startSamples = generateTone(startFreq, 0.2, startVolume, startDecay)
	endSamples = generateTone(endFreq, 0.2, endVolume, endDecay)
	errorSamples = generateDoubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
}

func play(samples []int16) {
	if disabled || len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	soundOnce.Do(initSound)
	go play(startSamples)
}

func PlayEnd() {
	soundOnce.Do(initSound)
	go play(endSamples)
}

func PlayError() {
	soundOnce.Do(initSound)
	go play(errorSamples)
}
