package dictate

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavPCM is the WAVE format tag for integer PCM
const wavPCM = 1

// EncodeWAV writes samples in [-1, 1] as 16-bit mono PCM. Out of range
// samples are clipped.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, v := range samples {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		buf.Data[i] = int(v * 32767)
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, wavPCM)
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
