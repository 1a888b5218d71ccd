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

// Package sdlaudio plays the tone through an SDL audio device.
//
// The tone is a 329 Hz sine wave unless a wav or mp3 file is set through
// SetAudioData("sdl", "sample", path) before the emulator is created.
package sdlaudio

import (
	"fmt"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/Francesco149/go-hachi/internal/tone"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate   = 44100
	bufferLength = 512

	// amount of audio kept queued while the tone is on. A few frames is
	// enough to cover an emulator frame running late.
	queueTarget = sampleRate / 60 * 4
)

// SDLAudio implements hachi.Audio on top of an SDL queued audio device.
type SDLAudio struct {
	id      sdl.AudioDeviceID
	spec    sdl.AudioSpec
	sample  string
	tone    *tone.Sample
	buf     []byte
	playing bool
}

func (a *SDLAudio) OnInit(c *hachi.Chip8) (err error) {
	if a.sample != "" {
		a.tone, err = tone.Load(a.sample, sampleRate)
		if err != nil {
			return err
		}
	} else {
		a.tone = tone.Sine(tone.Frequency, sampleRate)
	}

	if err = sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return errors.Wrap(err, "initializing sdl audio")
	}

	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  bufferLength,
	}
	a.id, err = sdl.OpenAudioDevice("", false, spec, &a.spec, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return errors.Wrap(err, "opening audio device")
	}

	a.buf = make([]byte, bufferLength)
	a.playing = false

	c.Logger().Debug("SDL audio initialized",
		log.Int("rate", int(a.spec.Freq)),
		log.Int("tone_samples", a.tone.Len()),
		log.String("sample", a.sample))
	return nil
}

// Play starts the tone from the beginning of the loop.
func (a *SDLAudio) Play() error {
	if a.playing {
		return nil
	}
	a.playing = true
	a.tone.Reset()
	if err := a.fill(); err != nil {
		return err
	}
	sdl.PauseAudioDevice(a.id, false)
	return nil
}

// Pause stops the tone and drops whatever is still queued.
func (a *SDLAudio) Pause() error {
	if !a.playing {
		return nil
	}
	a.playing = false
	sdl.PauseAudioDevice(a.id, true)
	sdl.ClearQueuedAudio(a.id)
	return nil
}

// Frame tops up the device queue while the tone is on.
func (a *SDLAudio) Frame() error {
	if !a.playing {
		return nil
	}
	return a.fill()
}

func (a *SDLAudio) fill() error {
	for sdl.GetQueuedAudioSize(a.id) < queueTarget {
		a.tone.ReadU8(a.buf)
		if err := sdl.QueueAudio(a.id, a.buf); err != nil {
			return errors.Wrap(err, "queueing audio")
		}
	}
	return nil
}

func (a *SDLAudio) Close() error {
	sdl.CloseAudioDevice(a.id)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return nil
}

func (a *SDLAudio) SetData(key string, value interface{}) error {
	if key != "sample" {
		return fmt.Errorf("unknown data key '%s'", key)
	}
	path, ok := value.(string)
	if !ok {
		return fmt.Errorf("invalid type %T for sample", value)
	}
	a.sample = path
	return nil
}

func init() {
	if err := hachi.RegisterAudio("sdl", &SDLAudio{}); err != nil {
		panic(err)
	}
}
