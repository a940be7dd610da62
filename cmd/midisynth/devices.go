package main

import (
	"fmt"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	sdkmidi "github.com/leandrodaf/midisynth/sdk/midi"
	"github.com/spf13/cobra"
)

const packetBuffer = 256

var deviceID int

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		client, err := sdkmidi.NewMIDIClient(clientOptions(log)...)
		if err != nil {
			return err
		}
		defer client.Stop()

		devices, err := client.ListDevices()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(devices) == 0 {
			fmt.Fprintln(out, "no MIDI input devices")
			return nil
		}
		for i, d := range devices {
			fmt.Fprintf(out, "%2d  %s\n", i, d)
		}
		return nil
	},
}

// openDevice selects --device and starts capturing. The caller stops the
// returned client.
func openDevice(log contracts.Logger) (contracts.ClientMIDI, chan contracts.Packet, error) {
	return sdkmidi.Open(deviceID, packetBuffer, clientOptions(log)...)
}
