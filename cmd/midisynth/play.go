package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/leandrodaf/midisynth/internal/soundfont"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/synth"
	"github.com/spf13/cobra"
)

var (
	watch       bool
	readStdin   bool
	audioBuffer time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a MIDI input device through the synthesizer",
	Long: `play renders a MIDI input device through the synthesizer to the default
audio output. Control messages such as "note 60 100 1" or "load piano" are
read from standard input, one per line. Use --device -1 to play from standard
input only.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	flags := playCmd.Flags()
	flags.IntVarP(&deviceID, "device", "d", 0, "Input device index, or -1 for none")
	flags.BoolVarP(&watch, "watch", "w", false, "Reload the soundfont when the file changes")
	flags.BoolVar(&readStdin, "stdin", true, "Read control messages from standard input")
	flags.DurationVar(&audioBuffer, "buffer", 50*time.Millisecond, "Audio output buffer duration")
}

func runPlay(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, path, err := newSynth(log)
	if err != nil {
		return err
	}
	defer s.Close()
	host := synth.NewHost(s, s.Config().BlockSize*8)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   s.Config().SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   audioBuffer,
	})
	if err != nil {
		return err
	}
	<-ready

	player := otoCtx.NewPlayer(host.Reader())
	defer player.Close()
	player.Play()

	if watch {
		if path == "" {
			return errors.New("--watch needs --soundfont")
		}
		w, err := soundfont.NewWatcher(path, soundfont.DefaultReloadDelay)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx, host.Reload); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Soundfont watcher stopped", log.Field().Error("error", err))
			}
		}()
		log.Info("Watching soundfont", log.Field().String("path", path))
	}

	if readStdin {
		go readControl(os.Stdin, host, log)
	}

	if deviceID < 0 {
		log.Info("Playing; press Ctrl+C to exit")
		<-ctx.Done()
		return nil
	}

	client, packets, err := openDevice(log)
	if err != nil {
		return err
	}
	defer client.Stop()

	log.Info("Playing; press Ctrl+C to exit", log.Field().Int("device", deviceID))
	if err := host.Capture(ctx, packets); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readControl routes every line of r to the host until r is exhausted.
func readControl(r io.Reader, host *synth.Host, log contracts.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := host.SendLine(line); err != nil {
			log.Warn("Control message rejected",
				log.Field().String("line", line),
				log.Field().Error("error", err))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("Failed to read control messages", log.Field().Error("error", err))
	}
}
