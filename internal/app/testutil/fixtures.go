package testutil

import (
	"bytes"
	"encoding/binary"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// SilentWAV returns a valid 16 kHz mono PCM WAV holding samples zero samples
func SilentWAV(samples int) []byte {
	const sampleRate = 16000
	dataSize := samples * 2

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVEfmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

// MultipartUpload describes a POST /v1/transcribe body
type MultipartUpload struct {
	Filename string
	Content  []byte
	// Language is written as a form field when non-empty
	Language string
	// OmitFile leaves out the file part entirely
	OmitFile bool
}

// Build encodes the upload and returns the body and its content type
func (u MultipartUpload) Build(t testing.TB) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if !u.OmitFile {
		part, err := writer.CreateFormFile("file", u.Filename)
		require.NoError(t, err)
		_, err = part.Write(u.Content)
		require.NoError(t, err)
	}
	if u.Language != "" {
		require.NoError(t, writer.WriteField("language", u.Language))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// DirEntries lists the names in dir, failing the test on error
func DirEntries(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
