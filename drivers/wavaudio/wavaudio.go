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

// Package wavaudio records the tone to a WAV file instead of playing it.
//
// Every emulator frame appends 1/60 s of audio, either the tone or silence.
// Audio is buffered in memory in its entirety and written on Close, so this
// is mostly useful for tests and short recordings.
//
// Options, set through SetAudioData("wav", key, value):
//
//	path    output file (required)
//	sample  wav or mp3 file to use as the tone instead of the sine wave
package wavaudio

import (
	"fmt"
	"os"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/Francesco149/go-hachi/internal/tone"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/youpy/go-wav"
)

const (
	sampleRate      = 44100
	samplesPerFrame = sampleRate / 60
	silence         = 128
)

// WavAudio implements hachi.Audio by recording 8 bit mono samples.
type WavAudio struct {
	path    string
	sample  string
	tone    *tone.Sample
	buffer  []wav.Sample
	playing bool
	logger  *log.Logger
}

func (a *WavAudio) OnInit(c *hachi.Chip8) (err error) {
	if a.path == "" {
		return errors.New("no output path set")
	}
	if a.sample != "" {
		a.tone, err = tone.Load(a.sample, sampleRate)
		if err != nil {
			return err
		}
	} else {
		a.tone = tone.Sine(tone.Frequency, sampleRate)
	}

	a.buffer = a.buffer[:0]
	a.playing = false
	a.logger = c.Logger()
	return nil
}

func (a *WavAudio) Play() error {
	if !a.playing {
		a.tone.Reset()
	}
	a.playing = true
	return nil
}

func (a *WavAudio) Pause() error {
	a.playing = false
	return nil
}

func (a *WavAudio) Frame() error {
	for i := 0; i < samplesPerFrame; i++ {
		v := silence
		if a.playing {
			v = int(tone.U8(a.tone.Next()))
		}
		s := wav.Sample{}
		s.Values[0] = v
		a.buffer = append(a.buffer, s)
	}
	return nil
}

// Close writes the recording to disk.
func (a *WavAudio) Close() (rerr error) {
	f, err := os.Create(a.path)
	if err != nil {
		return errors.Wrap(err, "creating wav file")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "closing wav file")
		}
	}()

	a.logger.Info("Writing audio",
		log.String("path", a.path),
		log.Int("samples", len(a.buffer)))

	enc := wav.NewWriter(f, uint32(len(a.buffer)), 1, sampleRate, 8)
	if enc == nil {
		return errors.New("bad parameters for wav encoding")
	}
	return errors.Wrap(enc.WriteSamples(a.buffer), "writing wav samples")
}

func (a *WavAudio) SetData(key string, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("invalid type %T for %s", value, key)
	}
	switch key {
	case "path":
		a.path = s
	case "sample":
		a.sample = s
	default:
		return fmt.Errorf("unknown data key '%s'", key)
	}
	return nil
}

func init() {
	if err := hachi.RegisterAudio("wav", &WavAudio{}); err != nil {
		panic(err)
	}
}
