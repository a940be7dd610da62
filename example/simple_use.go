package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/internal/render"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/midi"
	"github.com/leandrodaf/midisynth/sdk/synth"
)

func main() {
	log := logger.NewDevelopmentLogger()
	defer log.Sync()

	filter := contracts.MIDIEventFilter{
		Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff, contracts.ControlChange},
	}
	lister, err := midi.NewMIDIClient(contracts.WithLogger(log))
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}
	devices, err := lister.ListDevices()
	_ = lister.Stop()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	client, packetChannel, err := midi.Open(0, 100,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(filter),
	)
	if err != nil {
		log.Error("Failed to open MIDI device", log.Field().Error("error", err))
		return
	}
	defer client.Stop()

	s, err := synth.New(
		contracts.WithLogger(log),
		contracts.WithSearchPaths("/usr/share/sounds/sf2", "/usr/share/soundfonts"),
		contracts.WithSoundFont("FluidR3_GM"),
	)
	if err != nil {
		log.Error("Failed to create synth", log.Field().Error("error", err))
		return
	}
	defer s.Close()
	host := synth.NewHost(s, 0)

	// Render in the background; a real application hands host.Reader() to
	// an audio player instead.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		r := host.Reader()
		buf := make([]byte, s.Config().SampleRate/100*render.BytesPerFrame)
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = r.Read(buf)
			}
		}
	}()

	fmt.Println("Playing MIDI input... Press Ctrl+C to exit.")
	_ = host.Capture(ctx, packetChannel)

	stats := s.Stats()
	log.Info("Stopped",
		log.Field().Uint64("ignored", stats.Ignored),
		log.Field().Uint64("sysexDropped", stats.SysExDropped))
}
