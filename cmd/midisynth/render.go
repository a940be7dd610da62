package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/midisynth/internal/control"
	"github.com/leandrodaf/midisynth/internal/render"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/synth"
	"github.com/spf13/cobra"
)

var (
	outputFile string
	rawFile    string
	scriptFile string
	duration   time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render raw MIDI bytes and control scripts to a WAV file",
	Long: `render feeds a file of raw MIDI bytes and/or a control script to the
synthesizer and writes the output to a 16-bit stereo WAV file.

A script holds one control message per line or separated by ';'. The extra
message "wait <ms>" advances time before the following messages.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	flags := renderCmd.Flags()
	flags.StringVarP(&outputFile, "output", "o", "", "Output WAV file path (required)")
	flags.StringVar(&rawFile, "raw", "", "File of raw MIDI bytes fed at the start")
	flags.StringVar(&scriptFile, "script", "", "Control script file")
	flags.DurationVar(&duration, "duration", 0, "Length of the output, default the script length plus 2s")
	_ = renderCmd.MarkFlagRequired("output")
}

func runRender(cmd *cobra.Command, args []string) error {
	if rawFile == "" && scriptFile == "" {
		return errors.New("nothing to render: give --raw or --script")
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, _, err := newSynth(log)
	if err != nil {
		return err
	}
	defer s.Close()
	rate := s.Config().SampleRate

	var seq *sequence
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return err
		}
		msgs, err := control.ParseScript(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", scriptFile, err)
		}
		if seq, err = newSequence(s, msgs, rate); err != nil {
			return fmt.Errorf("%s: %w", scriptFile, err)
		}
	} else {
		seq = &sequence{synth: s}
	}

	if rawFile != "" {
		data, err := os.ReadFile(rawFile)
		if err != nil {
			return err
		}
		s.Feed(data)
	}

	frames := int(duration.Seconds() * float64(rate))
	if duration <= 0 {
		frames = seq.length() + 2*rate
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	if err := render.WriteWAV(out, seq, rate, frames, s.Config().BlockSize*8); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	stats := s.Stats()
	log.Info("Rendered",
		log.Field().String("output", outputFile),
		log.Field().Int("frames", frames),
		log.Field().Uint64("ignored", stats.Ignored),
		log.Field().Uint64("sysexDropped", stats.SysExDropped),
		log.Field().Uint64("generatorsDropped", stats.GeneratorsDropped))
	return nil
}

type timedMessage struct {
	frame int
	msg   control.Message
}

// sequence renders a synth, sending each scheduled message when playback
// reaches its frame.
type sequence struct {
	synth  *synth.Synth
	events []timedMessage
	next   int
	pos    int
}

// newSequence schedules msgs, interpreting "wait <ms>" as a delay.
func newSequence(s *synth.Synth, msgs []control.Message, sampleRate int) (*sequence, error) {
	seq := &sequence{synth: s}
	frame := 0
	for _, m := range msgs {
		if m.Selector != "wait" {
			seq.events = append(seq.events, timedMessage{frame: frame, msg: m})
			continue
		}
		if len(m.Args) != 1 || m.Args[0].IsSymbol || m.Args[0].Value < 0 {
			return nil, fmt.Errorf("%w: %s", contracts.ErrMalformedInput, m)
		}
		frame += int(m.Args[0].Value * float64(sampleRate) / 1000)
	}
	seq.events = append(seq.events, timedMessage{frame: frame, msg: control.Message{}})
	return seq, nil
}

// length is the frame of the last scheduled message.
func (q *sequence) length() int {
	if len(q.events) == 0 {
		return 0
	}
	return q.events[len(q.events)-1].frame
}

// Process implements render.Renderer, splitting blocks at message frames.
func (q *sequence) Process(frames int, left, right []float32) {
	done := 0
	for done < frames {
		q.flush()
		n := frames - done
		if q.next < len(q.events) {
			n = min(n, q.events[q.next].frame-q.pos)
		}
		q.synth.Process(n, left[done:done+n], right[done:done+n])
		done += n
		q.pos += n
	}
	q.flush()
}

// flush sends every message due at the current position.
func (q *sequence) flush() {
	for q.next < len(q.events) && q.events[q.next].frame <= q.pos {
		if m := q.events[q.next].msg; m.Selector != "" {
			// Rejected messages are logged by the synth.
			_ = q.synth.Send(m)
		}
		q.next++
	}
}
