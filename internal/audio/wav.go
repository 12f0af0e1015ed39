package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/entities"
)

const (
	bitDepth       = 16
	pcmAudioFormat = 1
)

// Artifact is a temporary WAV file that lives for one recognition call
type Artifact struct {
	path     string
	released bool
}

// Path returns the location of the WAV file
func (a *Artifact) Path() string {
	return a.path
}

// Open opens the WAV file for reading
func (a *Artifact) Open() (*os.File, error) {
	if a.released {
		return nil, fmt.Errorf("artifact %s already released", a.path)
	}
	return os.Open(a.path)
}

// Release deletes the WAV file. It is safe to call more than once.
func (a *Artifact) Release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove audio artifact: %w", err)
	}
	return nil
}

// EncodeWAV writes mono float samples as 16-bit PCM to a uniquely named file in dir.
// An empty dir means os.TempDir().
func EncodeWAV(dir string, samples []float32, sampleRate int) (*Artifact, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", domain.ErrEncoding, sampleRate)
	}
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, fmt.Sprintf("asr_%s.wav", uuid.NewString()))
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: create audio artifact: %v", domain.ErrEncoding, err)
	}
	artifact := &Artifact{path: path}

	if err := writePCM(file, samples, sampleRate); err != nil {
		file.Close()
		return nil, errors.Join(fmt.Errorf("%w: %v", domain.ErrEncoding, err), artifact.Release())
	}
	if err := file.Close(); err != nil {
		return nil, errors.Join(fmt.Errorf("%w: close audio artifact: %v", domain.ErrEncoding, err), artifact.Release())
	}

	return artifact, nil
}

func writePCM(file *os.File, samples []float32, sampleRate int) error {
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buffer.Data[i] = floatToPCM16(s)
	}

	enc := wav.NewEncoder(file, sampleRate, bitDepth, 1, pcmAudioFormat)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

func floatToPCM16(s float32) int {
	v := float64(s)
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(math.Round(v * math.MaxInt16))
}

// ReadWAVFile decodes an integer PCM WAV file into a channel-major float buffer.
// Float and compressed formats are rejected.
// It returns the file's sample rate alongside the samples.
func ReadWAVFile(path string) (entities.AudioBuffer, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return entities.AudioBuffer{}, 0, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return entities.AudioBuffer{}, 0, fmt.Errorf("%w: %s is not a valid wav file", domain.ErrEncoding, path)
	}
	if dec.WavAudioFormat != pcmAudioFormat {
		return entities.AudioBuffer{}, 0, fmt.Errorf("%w: %s uses wav format %d, only integer PCM is supported", domain.ErrEncoding, path, dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return entities.AudioBuffer{}, 0, fmt.Errorf("%w: decode wav: %v", domain.ErrEncoding, err)
	}

	numChannels := pcm.Format.NumChannels
	if numChannels <= 0 {
		return entities.AudioBuffer{}, 0, fmt.Errorf("%w: wav has no channels", domain.ErrEncoding)
	}

	scale := float32(math.Pow(2, float64(dec.BitDepth)-1))
	// 8-bit PCM is unsigned with silence at 128
	offset := 0
	if dec.BitDepth == 8 {
		offset = 128
	}
	frames := len(pcm.Data) / numChannels
	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames*numChannels; i++ {
		channels[i%numChannels][i/numChannels] = float32(pcm.Data[i]-offset) / scale
	}

	return entities.NewChannelBuffer(channels), pcm.Format.SampleRate, nil
}
