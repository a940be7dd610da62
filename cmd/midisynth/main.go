// Command midisynth plays MIDI input through a SoundFont synthesizer.
package main

import (
	"fmt"
	"os"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/internal/soundfont"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/synth"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	logLevel      string
	logFile       string
	soundFont     string
	searchPaths   []string
	sysExCapacity int
	engineConfig  contracts.EngineConfig
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midisynth",
	Short: "Play MIDI input through a SoundFont synthesizer",
	Long: `midisynth decodes raw MIDI bytes from an input device or a file and
renders them with a SoundFont 2 synthesizer.

Examples:
  midisynth devices
  midisynth monitor --device 0
  midisynth play -s FluidR3_GM --watch
  midisynth render -s piano.sf2 --script song.txt -o song.wav`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "Write logs as JSON to this file instead of the console")
	flags.StringVarP(&soundFont, "soundfont", "s", "", "Soundfont to load, as a path or a name resolved against --path")
	flags.StringSliceVarP(&searchPaths, "path", "p", nil, "Directories searched for soundfonts")
	flags.IntVar(&sysExCapacity, "sysex-capacity", contracts.DefaultSysExCapacity, "Sysex buffer size in bytes")
	flags.IntVar(&engineConfig.SampleRate, "sample-rate", 44100, "Output sample rate in Hz")
	flags.IntVar(&engineConfig.BlockSize, "block", 64, "Engine block size in frames")
	flags.IntVar(&engineConfig.Polyphony, "polyphony", 256, "Maximum number of voices")
	flags.Float64Var(&engineConfig.Gain, "gain", 0.6, "Output gain")
	flags.BoolVar(&engineConfig.Effects, "effects", false, "Enable reverb and chorus")

	rootCmd.AddCommand(devicesCmd, infoCmd, monitorCmd, playCmd, renderCmd)
}

// newLogger builds the logger selected by the global flags.
func newLogger() (contracts.Logger, error) {
	level, ok := contracts.ParseLogLevel(logLevel)
	if !ok {
		return nil, fmt.Errorf("%w: unknown log level %q", contracts.ErrMalformedInput, logLevel)
	}
	var log contracts.Logger
	if logFile != "" {
		log = logger.NewZapLogger()
		log.SetDestination(contracts.FileLog, logFile)
	} else {
		log = logger.NewDevelopmentLogger()
	}
	log.SetLevel(level)
	return log, nil
}

// clientOptions translates the global flags into client options.
func clientOptions(log contracts.Logger) []contracts.Option {
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithSysExCapacity(sysExCapacity),
		contracts.WithEngineConfig(engineConfig),
		contracts.WithSearchPaths(searchPaths...),
	}
	if level, ok := contracts.ParseLogLevel(logLevel); ok {
		opts = append(opts, contracts.WithLogLevel(level))
	}
	return opts
}

// newSynth creates the synth and loads --soundfont. It returns the resolved
// soundfont path, empty when none was requested.
func newSynth(log contracts.Logger) (*synth.Synth, string, error) {
	s, err := synth.New(clientOptions(log)...)
	if err != nil {
		return nil, "", err
	}
	if !s.Available() {
		return nil, "", contracts.ErrEngineUnavailable
	}
	if soundFont == "" {
		log.Warn("No soundfont given; output will be silent")
		return s, "", nil
	}
	path, err := soundfont.Resolve(soundFont, searchPaths)
	if err != nil {
		return nil, "", err
	}
	if err := s.LoadFile(path); err != nil {
		return nil, "", err
	}
	return s, path, nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the synthesis engine version and settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		cfg := s.Config()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "engine:      %s\n", s.Info())
		fmt.Fprintf(out, "sample rate: %d Hz\n", cfg.SampleRate)
		fmt.Fprintf(out, "block:       %d frames\n", cfg.BlockSize)
		fmt.Fprintf(out, "polyphony:   %d\n", cfg.Polyphony)
		fmt.Fprintf(out, "channels:    %d\n", cfg.MIDIChannels)
		if path != "" {
			fmt.Fprintf(out, "soundfont:   %s\n", path)
		}
		return nil
	},
}
