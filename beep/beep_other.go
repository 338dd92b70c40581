//go:build !linux

package beep

import (
	"encoding/binary"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	startSamples []int16
	endSamples   []int16
	errorSamples []int16
	soundOnce    sync.Once
)

func initSound() {
	startSamples = generateTone(startFreq, 0.05, startVolume, startDecay)
	endSamples = generateTone(endFreq, 0.07, endVolume, endDecay)
	errorSamples = generateDoubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
}

func play(samples []int16) {
	if disabled || len(samples) == 0 {
		return
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	done := make(chan struct{})
	var once sync.Once
	pos := 0
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n := copy(out, pcm[pos:])
			pos += n
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if pos >= len(pcm) {
				once.Do(func() { close(done) })
			}
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		return
	}
	defer dev.Uninit()
	if err := dev.Start(); err != nil {
		return
	}
	<-done
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
