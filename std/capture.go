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
	"bytes"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// captureMagic opens every capture file so stray files are not mistaken
// for recordings.
var captureMagic = []byte("UNRANDv1")

// CaptureWriter records observed output words into a snappy-compressed
// file for offline solving.
type CaptureWriter struct {
	f  *os.File
	z  *snappy.Writer
	ww *WordWriter
}

// CreateCapture creates (or truncates) a capture file at path.
func CreateCapture(path string) (*CaptureWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create capture")
	}
	if _, err := f.Write(captureMagic); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write capture header")
	}
	z := snappy.NewBufferedWriter(f)
	return &CaptureWriter{f: f, z: z, ww: NewWordWriter(z)}, nil
}

func (c *CaptureWriter) WriteWord(v uint32) error { return c.ww.WriteWord(v) }

// Close flushes the compressor and closes the file. The capture is not
// readable until Close succeeds.
func (c *CaptureWriter) Close() error {
	if err := c.z.Close(); err != nil {
		c.f.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(c.f.Close())
}

// CaptureReader replays a recorded output stream. ReadWord returns io.EOF
// once the recording is exhausted.
type CaptureReader struct {
	f  *os.File
	wr *WordReader
}

// OpenCapture opens a capture file previously produced by CaptureWriter.
func OpenCapture(path string) (*CaptureReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open capture")
	}
	header := make([]byte, len(captureMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "read capture header")
	}
	if !bytes.Equal(header, captureMagic) {
		f.Close()
		return nil, errors.Errorf("%s is not a capture file", path)
	}
	return &CaptureReader{f: f, wr: NewWordReader(snappy.NewReader(f))}, nil
}

func (c *CaptureReader) ReadWord() (uint32, error) { return c.wr.ReadWord() }

func (c *CaptureReader) Close() error { return c.f.Close() }
