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

// Package glfw implements a windowed display driver using GLFW and OpenGL.
//
// The screen is uploaded as a texture and drawn on a single quad. Options:
//
//	SetDriverData("glfw", "scale", n)        window pixels per CHIP-8 pixel (default 16)
//	SetDriverData("glfw", "title", s)        window title
//	SetDriverData("glfw", "key_map", m)      map[glfw.Key]uint16 keypad layout
//
// GLFW requires all calls to happen on the main thread, so the program must
// call runtime.LockOSThread from an init function.
package glfw

import (
	"context"
	"fmt"
	"time"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// DefaultScale is the default window pixels per CHIP-8 pixel.
const DefaultScale = 16

const frameInterval = time.Second / 60

// DefaultKeyMap lays the hex keypad out on the left side of a qwerty keyboard.
var DefaultKeyMap = map[glfw.Key]uint16{
	glfw.KeyX: hachi.Key0,
	glfw.Key1: hachi.Key1,
	glfw.Key2: hachi.Key2,
	glfw.Key3: hachi.Key3,
	glfw.KeyQ: hachi.Key4,
	glfw.KeyW: hachi.Key5,
	glfw.KeyE: hachi.Key6,
	glfw.KeyA: hachi.Key7,
	glfw.KeyS: hachi.Key8,
	glfw.KeyD: hachi.Key9,
	glfw.KeyZ: hachi.KeyA,
	glfw.KeyC: hachi.KeyB,
	glfw.Key4: hachi.KeyC,
	glfw.KeyR: hachi.KeyD,
	glfw.KeyF: hachi.KeyE,
	glfw.KeyV: hachi.KeyF,
}

// A GLFWDriver shows the screen in a window and reads the keypad from the
// keyboard. Escape closes the window.
type GLFWDriver struct {
	scale  int
	title  string
	keyMap map[glfw.Key]uint16

	window         *glfw.Window
	shader         uint32
	vao, vbo       uint32
	tex            uint32
	pixels         []byte
	dirty          bool
	down, released uint16
	logger         *log.Logger
}

func (d *GLFWDriver) OnInit(c *hachi.Chip8) error {
	if d.scale == 0 {
		d.scale = DefaultScale
	}
	if d.title == "" {
		d.title = "CHIP-8"
	}
	if d.keyMap == nil {
		d.keyMap = DefaultKeyMap
	}
	d.logger = c.Logger()
	d.down, d.released = 0, 0

	if err := d.initGL(); err != nil {
		return err
	}

	d.pixels = c.Screen.Luminance(d.pixels)
	d.dirty = true

	d.logger.Debug("GLFW driver initialized",
		log.Int("scale", d.scale),
		log.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))))
	return nil
}

// initGL initializes GLFW and openGL.
func (d *GLFWDriver) initGL() error {
	err := glfw.Init()
	if err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	d.window, err = glfw.CreateWindow(hachi.Width*d.scale, hachi.Height*d.scale,
		d.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	d.window.MakeContextCurrent()
	d.window.SetKeyCallback(d.keyCallback)
	glfw.SwapInterval(1)

	if err = gl.Init(); err != nil {
		d.dispose()
		return errors.Wrapf(err, "gl.Init failed")
	}
	gl.ClearColor(0, 0, 0, 1.0)

	d.shader, err = compileProgram(vertex, fragment)
	if err != nil {
		d.dispose()
		return errors.Wrapf(err, "failed to compile shaders")
	}
	gl.UseProgram(d.shader)
	gl.Uniform4f(gl.GetUniformLocation(d.shader, glStr("foreground")), 1, 1, 1, 1)
	gl.Uniform4f(gl.GetUniformLocation(d.shader, glStr("background")), 0, 0, 0, 1)
	gl.Uniform1i(gl.GetUniformLocation(d.shader, glStr("screen")), 0)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	vertAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertPos")))
	texCoordAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertTexCoord")))

	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointer(vertAttrib, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))

	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))

	d.tex = makeTexture()
	return nil
}

func (d *GLFWDriver) keyCallback(_ *glfw.Window, key glfw.Key, scancode int,
	action glfw.Action, mods glfw.ModifierKey) {

	if key == glfw.KeyEscape && action == glfw.Press {
		d.window.SetShouldClose(true)
		return
	}

	mask, ok := d.keyMap[key]
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		d.down |= mask
	case glfw.Release:
		d.down &^= mask
		d.released |= mask
	}
}

// Run polls events and runs one frame every 1/60 s until the window is closed
// or ctx is done.
func (d *GLFWDriver) Run(ctx context.Context,
	frame func(hachi.Keypad) error) error {

	last := time.Now()
	for !d.window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		glfw.PollEvents()

		// run late frames back to back but never try to catch up on more
		// than a few of them
		if time.Since(last) > 4*frameInterval {
			last = time.Now().Add(-frameInterval)
		}
		for time.Since(last) >= frameInterval {
			last = last.Add(frameInterval)

			k := hachi.Keypad{Down: d.down, Released: d.released}
			d.released = 0
			if err := frame(k); err != nil {
				return err
			}
		}

		d.draw()
		d.window.SwapBuffers()
	}
	return nil
}

func (d *GLFWDriver) draw() {
	if d.dirty {
		uploadTexture(d.tex, hachi.Width, hachi.Height, d.pixels)
		d.dirty = false
	}

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(d.shader)
	gl.BindVertexArray(d.vao)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.tex)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

func (d *GLFWDriver) UpdateScreen(c *hachi.Chip8) error {
	d.pixels = c.Screen.Luminance(d.pixels)
	d.dirty = true
	return nil
}

// Close releases the GL objects and destroys the window.
func (d *GLFWDriver) Close() error {
	d.dispose()
	return nil
}

func (d *GLFWDriver) dispose() {
	if d.window == nil {
		return
	}
	if d.tex != 0 {
		gl.DeleteTextures(1, &d.tex)
		gl.DeleteBuffers(1, &d.vbo)
		gl.DeleteVertexArrays(1, &d.vao)
		gl.DeleteProgram(d.shader)
		d.tex, d.vbo, d.vao, d.shader = 0, 0, 0, 0
	}
	d.window.Destroy()
	d.window = nil
	glfw.Terminate()
}

func (d *GLFWDriver) GetData(key string) interface{} {
	if key == "window" {
		return d.window
	}
	return nil
}

func (d *GLFWDriver) SetData(key string, value interface{}) error {
	switch key {
	case "scale":
		scale, ok := value.(int)
		if !ok || scale < 1 {
			return fmt.Errorf("invalid scale %v", value)
		}
		d.scale = scale
	case "title":
		title, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type %T for title", value)
		}
		d.title = title
	case "key_map":
		keyMap, ok := value.(map[glfw.Key]uint16)
		if !ok {
			return fmt.Errorf("invalid type %T for key_map", value)
		}
		d.keyMap = keyMap
	default:
		return fmt.Errorf("unknown data key '%s'", key)
	}
	return nil
}

func init() {
	if err := hachi.RegisterDriver("glfw", &GLFWDriver{}); err != nil {
		panic(err)
	}
}
