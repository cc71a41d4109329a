package sampler

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	wav "github.com/youpy/go-wav"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
)

// Loader fetches and decodes an audio file.
type Loader interface {
	Load(ctx context.Context, file string) (*graph.Buffer, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, file string) (*graph.Buffer, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, file string) (*graph.Buffer, error) {
	return f(ctx, file)
}

// FileLoader decodes WAV and MP3 files below Root.
type FileLoader struct {
	Root string
}

// Load reads Root/file and decodes it by extension.
func (l FileLoader) Load(ctx context.Context, file string) (*graph.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(l.Root, filepath.FromSlash(file)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(file, f)
}

// Decode picks the decoder for r from the extension of file.
func Decode(file string, r interface {
	io.Reader
	io.ReaderAt
}) (*graph.Buffer, error) {
	switch strings.ToLower(path.Ext(file)) {
	case ".wav":
		return DecodeWAV(r)
	case ".mp3":
		return DecodeMP3(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file)
	}
}

// DecodeWAV reads a PCM WAV stream into a buffer at the file's rate.
func DecodeWAV(r interface {
	io.Reader
	io.ReaderAt
},
) (*graph.Buffer, error) {
	reader := wav.NewReader(r)

	format, err := reader.Format()
	if err != nil {
		return nil, err
	}

	channels := int(format.NumChannels)
	if channels < 1 {
		return nil, fmt.Errorf("wav: invalid channel count %d", channels)
	}

	// go-wav samples carry at most two channels.
	channels = min(channels, 2)
	data := make([][]float64, channels)

	for {
		samples, err := reader.ReadSamples()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		for _, sample := range samples {
			for ch := range data {
				data[ch] = append(data[ch], reader.FloatValue(sample, uint(ch)))
			}
		}
	}

	return graph.NewBuffer(float64(format.SampleRate), data)
}

// DecodeMP3 decodes an MP3 stream into a stereo buffer.
func DecodeMP3(r io.Reader) (*graph.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	// The decoder emits interleaved stereo signed 16-bit little-endian.
	const frameBytes = 4

	var left, right []float64

	if n := decoder.Length(); n > 0 {
		left = make([]float64, 0, n/frameBytes)
		right = make([]float64, 0, n/frameBytes)
	}

	chunk := make([]byte, 4096*frameBytes)

	for {
		n, err := io.ReadFull(decoder, chunk)
		for i := 0; i+frameBytes <= n; i += frameBytes {
			l := int16(binary.LittleEndian.Uint16(chunk[i:]))
			r := int16(binary.LittleEndian.Uint16(chunk[i+2:]))
			left = append(left, float64(l)/32768)
			right = append(right, float64(r)/32768)
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}

		if err != nil {
			return nil, err
		}
	}

	return graph.NewBuffer(float64(decoder.SampleRate()), [][]float64{left, right})
}
