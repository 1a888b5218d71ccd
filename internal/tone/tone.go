/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

// Package tone generates the looped waveform that is played while the sound
// timer is running.
package tone

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// Frequency of the default tone in Hz.
const Frequency = 329.0

// A Sample is a mono waveform with values in -1..1 that loops forever.
type Sample struct {
	Rate int
	data []float32
	pos  int
}

// Sine returns one second of a sine wave, which loops seamlessly for any
// integer frequency.
func Sine(freq float64, rate int) *Sample {
	s := &Sample{Rate: rate, data: make([]float32, rate)}
	for i := range s.data {
		s.data[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	}
	return s
}

// Load reads a wav or mp3 file, chosen by extension, and resamples its first
// channel to rate.
func Load(path string, rate int) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		data []float32
		from int
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		data, from, err = decodeWAV(f)
	case ".mp3":
		data, from, err = decodeMP3(f)
	default:
		return nil, fmt.Errorf("unsupported tone format '%s'", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading tone %s", path)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tone %s is empty", path)
	}

	return &Sample{Rate: rate, data: resample(data, from, rate)}, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	chans := int(dec.NumChans)
	if chans < 1 {
		chans = 1
	}
	// already scaled to -1..1, except 8 bit data which is unsigned and
	// comes out as 0..2
	var offset float32
	if dec.BitDepth == 8 {
		offset = 1
	}

	// first channel only
	floatBuf := buf.AsFloat32Buffer()
	data := make([]float32, 0, len(floatBuf.Data)/chans)
	for i := 0; i < len(floatBuf.Data); i += chans {
		data = append(data, floatBuf.Data[i]-offset)
	}
	return data, int(dec.SampleRate), nil
}

// go-mp3 always produces 16 bit little endian stereo, 4 bytes per frame.
func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}

	var data []float32
	chunk := make([]byte, 4096)
	for {
		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+1 < n; i += 4 {
			v := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			data = append(data, float32(v)/32768)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return data, dec.SampleRate(), nil
}

// resample converts data from one rate to another picking the nearest sample.
func resample(data []float32, from, to int) []float32 {
	if from == to || from <= 0 {
		return data
	}
	n := int(int64(len(data)) * int64(to) / int64(from))
	if n == 0 {
		n = 1
	}
	res := make([]float32, n)
	for i := range res {
		res[i] = data[int64(i)*int64(from)/int64(to)]
	}
	return res
}

// Len returns the loop length in samples.
func (s *Sample) Len() int { return len(s.data) }

// Reset restarts the loop.
func (s *Sample) Reset() { s.pos = 0 }

// Next returns the next value of the loop.
func (s *Sample) Next() float32 {
	v := s.data[s.pos]
	s.pos++
	if s.pos == len(s.data) {
		s.pos = 0
	}
	return v
}

// ReadU8 fills dst with unsigned 8 bit samples centered at 128.
func (s *Sample) ReadU8(dst []byte) {
	for i := range dst {
		dst[i] = U8(s.Next())
	}
}

// U8 converts a -1..1 value to an unsigned 8 bit sample.
func U8(v float32) byte {
	return byte(clamp(128+v*127, 0, 255))
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
