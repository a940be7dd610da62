package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/midisynth/internal/decoder"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print the events decoded from a MIDI input device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		client, packets, err := openDevice(log)
		if err != nil {
			return err
		}
		defer client.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p := &printer{out: cmd.OutOrStdout()}
		dec := decoder.New(p, sysExCapacity)
		log.Info("Monitoring MIDI input; press Ctrl+C to exit")
		for {
			select {
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil
				}
				return ctx.Err()
			case packet := <-packets:
				p.at = time.Unix(0, int64(packet.Timestamp))
				_, _ = dec.Write(packet.Data)
			}
		}
	},
}

func init() {
	monitorCmd.Flags().IntVarP(&deviceID, "device", "d", 0, "Input device index, see 'midisynth devices'")
}

// printer writes decoded events one per line using gomidi's formatting.
// Channels arrive 1-based and are printed 0-based, as gomidi does.
type printer struct {
	out io.Writer
	at  time.Time
}

func (p *printer) print(msg gomidi.Message) {
	if p.at.IsZero() {
		fmt.Fprintln(p.out, msg.String())
		return
	}
	fmt.Fprintf(p.out, "%s  %s\n", p.at.Format("15:04:05.000"), msg.String())
}

func (p *printer) Note(key, velocity, channel int) {
	p.print(gomidi.NoteOn(uint8(channel-1), uint8(key), uint8(velocity)))
}

func (p *printer) PolyPressure(value, key, channel int) {
	p.print(gomidi.PolyAfterTouch(uint8(channel-1), uint8(key), uint8(value)))
}

func (p *printer) ControlChange(controller, value, channel int) {
	p.print(gomidi.ControlChange(uint8(channel-1), uint8(controller), uint8(value)))
}

func (p *printer) ProgramChange(program, channel int) {
	p.print(gomidi.ProgramChange(uint8(channel-1), uint8(program)))
}

func (p *printer) ChannelPressure(value, channel int) {
	p.print(gomidi.AfterTouch(uint8(channel-1), uint8(value)))
}

func (p *printer) PitchBend(value, channel int) {
	p.print(gomidi.Pitchbend(uint8(channel-1), int16(value-8192)))
}

func (p *printer) SystemExclusive(data []byte) {
	p.print(gomidi.SysEx(data))
}
