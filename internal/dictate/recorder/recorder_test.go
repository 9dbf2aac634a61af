package recorder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encode(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

func TestBytesToFloat32(t *testing.T) {
	data := encode(0, 0.25, -1)

	assert.Equal(t, []float32{0, 0.25, -1}, bytesToFloat32(data, 3))
	assert.Equal(t, []float32{0, 0.25}, bytesToFloat32(data, 2))
	// A short buffer yields only whole samples
	assert.Equal(t, []float32{0, 0.25}, bytesToFloat32(data[:10], 3))
	assert.Empty(t, bytesToFloat32(nil, 4))
}

func TestRecorder_OnDataIgnoredWhenIdle(t *testing.T) {
	r := &Recorder{}
	r.onData(nil, encode(0.5), 1)
	assert.Empty(t, r.buf)

	r.recording = true
	r.onData(nil, encode(0.5, 0.75), 2)
	assert.Equal(t, []float32{0.5, 0.75}, r.buf)

	assert.Equal(t, []float32{0.5, 0.75}, r.Stop())
	assert.False(t, r.recording)
	assert.Nil(t, r.Stop())
}
