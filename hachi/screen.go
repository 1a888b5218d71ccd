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

package hachi

import "strings"

// Screen is the monochrome display buffer. Each row is a bit vector holding
// one bit per pixel, with the most significant bit being the leftmost pixel.
type Screen [Height]uint64

// Clear turns every pixel off.
func (s *Screen) Clear() { *s = Screen{} }

// Pixel reports whether the pixel at x, y is on. Coordinates outside the
// screen are always off.
func (s *Screen) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return s[y]&columnMask(x) != 0
}

// flip XORs a single pixel and reports whether it was on before, which is a
// collision in DRW terms.
func (s *Screen) flip(x, y int) (collision bool) {
	mask := columnMask(x)
	collision = s[y]&mask != 0
	s[y] ^= mask
	return
}

// Luminance expands the screen into one byte per pixel, row-major, with 0xFF
// for lit pixels. dst is reused when it is large enough.
func (s *Screen) Luminance(dst []byte) []byte {
	if cap(dst) < Width*Height {
		dst = make([]byte, Width*Height)
	}
	dst = dst[:Width*Height]

	for y, row := range s {
		for x := 0; x < Width; x++ {
			var v byte
			if row&columnMask(x) != 0 {
				v = 0xFF
			}
			dst[y*Width+x] = v
		}
	}
	return dst
}

// String draws the screen as text, '#' for lit pixels and '.' otherwise.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for _, row := range s {
		for x := 0; x < Width; x++ {
			if row&columnMask(x) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func columnMask(x int) uint64 { return 1 << (Width - 1 - uint(x)) }
