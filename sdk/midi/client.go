package midi

import (
	"fmt"

	"github.com/leandrodaf/midisynth/internal/options"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// NewMIDIClient creates a new MIDI input client with the specified options.
// It applies default options and initializes the client for the current platform.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	o, err := options.Apply(opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(&o)
}

// Open creates a client, selects deviceID and starts capturing into a
// channel buffered for buffer packets. The caller stops the client.
//
// Returns:
//   - contracts.ClientMIDI: The capturing client.
//   - chan contracts.Packet: The channel receiving raw packets.
//   - error: An error if the client could not be created or the device opened.
func Open(deviceID, buffer int, opts ...contracts.Option) (contracts.ClientMIDI, chan contracts.Packet, error) {
	client, err := NewMIDIClient(opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := client.SelectDevice(deviceID); err != nil {
		_ = client.Stop()
		return nil, nil, fmt.Errorf("select device %d: %w", deviceID, err)
	}
	packets := make(chan contracts.Packet, max(buffer, 1))
	client.StartCapture(packets)
	return client, packets, nil
}
