package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	wavPCM      = 1
)

// WriteWAV renders frames stereo frames from src into a 16-bit PCM WAV
// file, block frames at a time. Samples outside [-1, 1] are clipped.
func WriteWAV(w io.WriteSeeker, src Renderer, sampleRate, frames, block int) error {
	if sampleRate <= 0 || frames < 0 {
		return fmt.Errorf("invalid wav parameters: rate %d, frames %d", sampleRate, frames)
	}
	if block <= 0 {
		block = DefaultBlock
	}

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 2, wavPCM)
	left := make([]float32, block)
	right := make([]float32, block)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           make([]int, 0, block*2),
		SourceBitDepth: wavBitDepth,
	}

	for done := 0; done < frames; {
		n := min(block, frames-done)
		src.Process(n, left[:n], right[:n])
		buf.Data = buf.Data[:0]
		for i := 0; i < n; i++ {
			buf.Data = append(buf.Data, toPCM16(left[i]), toPCM16(right[i]))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
		done += n
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}
	return nil
}

func toPCM16(v float32) int {
	f := math.Max(-1, math.Min(1, float64(v)))
	return int(math.Round(f * math.MaxInt16))
}
