package main

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"leviathan/announcer"
	"leviathan/audio"
	"leviathan/beep"
	"leviathan/brain"
	"leviathan/encoder"
	"leviathan/hotkey"
	"leviathan/log"
	"leviathan/transcriber"
)

// minRecordFrames drops accidental taps shorter than 100ms.
const minRecordFrames = encoder.SampleRate / 10

// listener runs the push-to-talk loop: hold to record, release to
// transcribe, then reply through the announcer.
type listener struct {
	capture   audio.CaptureDevice
	hk        hotkey.Hotkey
	tr        transcriber.Transcriber
	br        *brain.Brain
	ann       *announcer.Announcer
	format    string
	contextFn func() string
}

func (l *listener) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.hk.Keydown():
			log.Info("hotkey down, recording")
			tuiSend(ListeningMsg{})
			go beep.PlayStart()

			audioData, format, frames, err := l.record(ctx)
			go beep.PlayEnd()
			if err != nil {
				log.Errorf("recording error: %v", err)
				tuiSend(IdleMsg{})
				continue
			}
			if frames < minRecordFrames {
				tuiSend(IdleMsg{})
				continue
			}

			l.respond(ctx, audioData, format)
		}
	}
}

// record captures until the hotkey is released or ctx is cancelled.
func (l *listener) record(ctx context.Context) ([]byte, string, uint64, error) {
	enc, err := encoder.New(l.format)
	if err != nil {
		return nil, "", 0, err
	}

	var mu sync.Mutex
	var stopped bool
	var frames uint64

	l.capture.SetCallback(func(data []byte, frameCount uint32) {
		mu.Lock()
		defer mu.Unlock()
		if stopped || len(data) < 2 {
			return
		}
		block := make([]int16, len(data)/2)
		for i := range block {
			block[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		if err := enc.EncodeBlock(block); err != nil {
			log.Errorf("encode error: %v", err)
			return
		}
		frames += uint64(frameCount)
		tuiSend(AudioLevelMsg{Level: rms(block)})
	})

	if err := l.capture.Start(); err != nil {
		l.capture.ClearCallback()
		return nil, "", 0, err
	}

	select {
	case <-l.hk.Keyup():
	case <-ctx.Done():
	}

	l.capture.Stop()
	l.capture.ClearCallback()

	mu.Lock()
	stopped = true
	total := frames
	mu.Unlock()

	if err := enc.Close(); err != nil {
		return nil, "", 0, err
	}
	return enc.Bytes(), enc.Format(), total, nil
}

// respond transcribes the recording and announces the reply. The think
// bubble stays up for the whole transcribe+generate stretch.
func (l *listener) respond(ctx context.Context, audioData []byte, format string) {
	l.ann.Think()
	tuiSend(ThinkingMsg{})

	tctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	transcript, err := l.tr.Transcribe(tctx, audioData, format)
	cancel()
	if err != nil {
		log.Errorf("transcription failed: %v", err)
		l.ann.Clear()
		tuiSend(IdleMsg{})
		return
	}
	if transcript == "" {
		log.Info("heard nothing recognizable")
		l.ann.Clear()
		tuiSend(IdleMsg{})
		return
	}

	log.Infof("you said: %s", transcript)
	tuiSend(HeardMsg{Text: transcript})

	line := l.br.Reply(transcript, l.contextFn())
	log.Infof("leviathan will say: %s", line)
	tuiSend(SpeakingMsg{Text: line})

	if err := l.ann.Announce(line); err != nil {
		log.Errorf("announcement failed: %v", err)
	}
	tuiSend(IdleMsg{})
}

func rms(block []int16) float64 {
	if len(block) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range block {
		normalized := float64(s) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(block)))
}
