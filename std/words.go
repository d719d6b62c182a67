// The MIT License (MIT)
//
// # Copyright (c) 2024 unrand
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Generator output travels as fixed 4-byte little-endian frames, both on
// the wire and inside capture files.

// WordWriter frames uint32 output words onto an underlying writer.
type WordWriter struct {
	w   io.Writer
	buf [4]byte
}

func NewWordWriter(w io.Writer) *WordWriter { return &WordWriter{w: w} }

func (ww *WordWriter) WriteWord(v uint32) error {
	binary.LittleEndian.PutUint32(ww.buf[:], v)
	if _, err := ww.w.Write(ww.buf[:]); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// WordReader decodes the frames produced by WordWriter. Read errors from
// the underlying reader pass through untouched so callers can still test
// against io.EOF.
type WordReader struct {
	r   io.Reader
	buf [4]byte
}

func NewWordReader(r io.Reader) *WordReader { return &WordReader{r: r} }

func (wr *WordReader) ReadWord() (uint32, error) {
	if _, err := io.ReadFull(wr.r, wr.buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(wr.buf[:]), nil
}
