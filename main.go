package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"leviathan/announcer"
	"leviathan/audio"
	"leviathan/beep"
	"leviathan/brain"
	"leviathan/config"
	"leviathan/encoder"
	"leviathan/hotkey"
	"leviathan/log"
	"leviathan/overlay"
	"leviathan/transcriber"
	"leviathan/tts"
	"leviathan/watcher"
)

var version = "dev"

// speaker is what the announce path needs from the voice backend.
type speaker interface {
	Speak(text string) error
	StreamSpeak(text string) error
}

func main() {
	run()
}

func run() {
	sayFlag := flag.String("say", "", "Speak this line once and exit")
	contextFlag := flag.String("context", "", "Extra context string for reply generation")
	streamFlag := flag.Bool("stream", false, "Use streaming TTS playback")
	overlayPath := flag.String("overlay-path", "overlay/state.json", "Overlay state file (JSON)")
	overlayHost := flag.String("overlay-host", "127.0.0.1", "Overlay server host")
	overlayPort := flag.Int("overlay-port", 5005, "Overlay server port")
	fontSize := flag.Int("overlay-font-size", overlay.DefaultFontSize, "Font size for overlay text")
	staticDir := flag.String("static", "static", "Directory served for overlay browser assets")
	watchFlag := flag.Duration("watch", watcher.DefaultInterval, "Gamestate poll interval (0 disables the watcher)")
	langFlag := flag.String("lang", "en", "Language code for transcription (empty = auto-detect)")
	formatFlag := flag.String("format", "flac", "Upload audio format: flac or wav")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	clipFlag := flag.Bool("clip-context", false, "Append clipboard contents to reply context")
	gainFlag := flag.Int("gain", 4, "Capture amplification factor")
	quietFlag := flag.Bool("quiet", false, "Disable recording cue beeps")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("leviathan %s\n", version)
		os.Exit(0)
	}

	log.Init(*logLevel)

	settings, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *quietFlag {
		beep.Disable()
	}

	switch *formatFlag {
	case "flac", "wav":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (use flac or wav)\n", *formatFlag)
		os.Exit(1)
	}

	// The three documents and the log live next to the state file.
	overlayDir := filepath.Dir(*overlayPath)
	stateFile := overlay.NewStateFile(*overlayPath, *fontSize)
	contextFile := overlay.NewContextFile(filepath.Join(overlayDir, "context.json"))
	gamestateFile := overlay.NewGamestateFile(filepath.Join(overlayDir, "gamestate.json"))
	eventLog := overlay.NewEventLog(filepath.Join(overlayDir, "gamestate.log"))

	server := overlay.NewServer(stateFile, contextFile, gamestateFile, eventLog, *staticDir)
	addr := net.JoinHostPort(*overlayHost, strconv.Itoa(*overlayPort))
	if err := server.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: overlay server: %v\n", err)
		os.Exit(1)
	}
	defer server.Close()

	// Whatever a previous run left behind is stale.
	if err := stateFile.Clear(); err != nil {
		log.Warnf("could not clear overlay state: %v", err)
	}

	voice, err := tts.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	speak := speakFunc(voice, *streamFlag)

	br := brain.New(settings)
	ann := announcer.New(stateFile, speak, announcer.DefaultClearDelay)

	contextFn := func() string {
		return gatherContext(contextFile, *contextFlag, *clipFlag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Info("interrupt, shutting down")
		cancel()
		tuiMu.Lock()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		tuiMu.Unlock()
	}()

	if *watchFlag > 0 {
		w := watcher.New(eventLog, *watchFlag, func(instruction string) (string, error) {
			return br.Reply(instruction, ""), nil
		}, ann.Announce)
		log.Infof("watching gamestate log (%d prior events, every %s)", w.Seeded(), *watchFlag)
		go w.Run(ctx)
	}

	if *sayFlag != "" {
		line := br.Reply(*sayFlag, contextFn())
		log.Infof("leviathan will say: %s", line)
		if err := ann.Announce(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Push-to-talk loop.
	tr, err := transcriber.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	tr.SetLanguage(*langFlag)

	audioCtx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	selectedDevice, err := pickDevice(audioCtx, *deviceFlag, *setupFlag)
	if err != nil {
		log.Warnf("device selection failed: %v, using default", err)
	}

	capture, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
		Gain:       *gainFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	go beep.Init()

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			cancel()
		}()
		tuiSend(ModeLineMsg{Text: modeLine(tr, br, *formatFlag, *streamFlag)})
		tuiSend(DeviceLineMsg{Text: deviceLine(selectedDevice)})
	} else {
		log.Info("push-to-talk mode: hold Ctrl to record, release to transcribe, Ctrl+C to exit")
	}

	l := &listener{
		capture:   capture,
		hk:        hk,
		tr:        tr,
		br:        br,
		ann:       ann,
		format:    *formatFlag,
		contextFn: contextFn,
	}
	l.run(ctx)
}

func speakFunc(voice speaker, stream bool) announcer.SpeakFunc {
	if stream {
		return voice.StreamSpeak
	}
	return voice.Speak
}

// gatherContext merges the browser-supplied context document, the --context
// flag, and optionally the clipboard into one prompt context string.
func gatherContext(file *overlay.ContextFile, extra string, clip bool) string {
	var parts []string
	if extra != "" {
		parts = append(parts, extra)
	}
	doc := file.Read()
	if doc.Selection != "" {
		parts = append(parts, doc.Selection)
	}
	if doc.URL != "" {
		parts = append(parts, "page: "+doc.URL)
	}
	if clip {
		if text, err := clipboard.ReadAll(); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				parts = append(parts, "clipboard: "+text)
			}
		}
	}
	return strings.Join(parts, " | ")
}

func pickDevice(ctx audio.Context, name string, setup bool) (*audio.DeviceInfo, error) {
	if name != "" {
		devices, err := ctx.Devices()
		if err != nil {
			return nil, err
		}
		for i := range devices {
			if devices[i].Name == name {
				return &devices[i], nil
			}
		}
		return nil, fmt.Errorf("device not found: %s", name)
	}
	if setup {
		return audio.SelectDevice(ctx)
	}
	return nil, nil
}

func modeLine(tr transcriber.Transcriber, br *brain.Brain, format string, stream bool) string {
	label := tr.Name()
	if lang := tr.GetLanguage(); lang != "" {
		label += " (" + lang + ")"
	}
	voice := "buffered"
	if stream {
		voice = "stream"
	}
	return fmt.Sprintf("[%s | %s | %s | %s]", format, label, br.Name(), voice)
}

func deviceLine(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}
