/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package resultio implements the length-prefixed, self-describing binary
// stream that every Result flows through between subcommands. Every
// domain-typed value in this codebase ships its own Encode/Decode pair
// (the teacher's idiom in duration/encode.go and certificates/*/encode.go)
// rather than reaching for encoding/gob.
package resultio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nabbar/blitz/internal/errs"
	"github.com/nabbar/blitz/internal/model"
)

// magic is the single byte marking the start of every record on the wire.
const magic byte = 0x01

const (
	maxStringLen = 1<<16 - 1 // u16 length prefix
	maxMethodLen = 1<<8 - 1  // u8 length prefix
	maxBodyLen   = 1<<32 - 1 // u32 length prefix
)

// Encoder writes Result records to an underlying stream. Concatenating two
// streams produced by two Encoders is itself a valid stream.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w in a buffer. The caller must call Flush before
// closing w; buffered bytes reach w only through Flush.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Flush pushes any buffered bytes to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Encode serializes one Result. A write error here is a sink error: the
// attack aborts immediately rather than keep generating load it cannot
// record (spec §7 propagation policy).
func (e *Encoder) Encode(r model.Result) error {
	if len(r.AttackName) > maxStringLen {
		return errs.Codef(errs.CodecError, "attack_name too long: %d bytes", len(r.AttackName))
	}
	if len(r.URL) > maxStringLen {
		return errs.Codef(errs.CodecError, "url too long: %d bytes", len(r.URL))
	}
	if len(r.Method) > maxMethodLen {
		return errs.Codef(errs.CodecError, "method too long: %d bytes", len(r.Method))
	}
	if len(r.Error) > maxStringLen {
		return errs.Codef(errs.CodecError, "error too long: %d bytes", len(r.Error))
	}

	if err := e.w.WriteByte(magic); err != nil {
		return err
	}
	if err := writeString16(e.w, r.AttackName); err != nil {
		return err
	}
	if err := writeUint64(e.w, r.Seq); err != nil {
		return err
	}
	if err := writeInt64(e.w, r.Timestamp); err != nil {
		return err
	}
	if err := writeUint64(e.w, r.Latency); err != nil {
		return err
	}
	if err := writeUint64(e.w, r.BytesIn); err != nil {
		return err
	}
	if err := writeUint64(e.w, r.BytesOut); err != nil {
		return err
	}
	if err := writeUint16(e.w, r.Code); err != nil {
		return err
	}
	if err := writeString16(e.w, r.URL); err != nil {
		return err
	}
	if err := writeString8(e.w, r.Method); err != nil {
		return err
	}
	if err := writeString16(e.w, r.Error); err != nil {
		return err
	}
	// body_len + body bytes: reserved for a future payload capture mode.
	// The current wire format always emits a zero-length body.
	return writeUint32Bytes(e.w, nil)
}

// Decoder reads Result records from an underlying stream.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads one Result. It returns io.EOF (unwrapped) only when the
// stream ends cleanly between records. A truncated final record is
// reported as a decoding error, per spec §4.5 — never silently dropped.
func (d *Decoder) Decode() (model.Result, error) {
	var r model.Result

	b, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return r, io.EOF
		}
		return r, err
	}
	if b != magic {
		return r, errs.Codef(errs.CodecError, "bad magic byte 0x%02x", b)
	}

	if r.AttackName, err = readString16(d.r); err != nil {
		return r, truncated("attack_name", err)
	}
	if r.Seq, err = readUint64(d.r); err != nil {
		return r, truncated("sequence_number", err)
	}
	if r.Timestamp, err = readInt64(d.r); err != nil {
		return r, truncated("timestamp_ns", err)
	}
	if r.Latency, err = readUint64(d.r); err != nil {
		return r, truncated("latency_ns", err)
	}
	if r.BytesIn, err = readUint64(d.r); err != nil {
		return r, truncated("bytes_in", err)
	}
	if r.BytesOut, err = readUint64(d.r); err != nil {
		return r, truncated("bytes_out", err)
	}
	if r.Code, err = readUint16(d.r); err != nil {
		return r, truncated("status_code", err)
	}
	if r.URL, err = readString16(d.r); err != nil {
		return r, truncated("url", err)
	}
	if r.Method, err = readString8(d.r); err != nil {
		return r, truncated("method", err)
	}
	if r.Error, err = readString16(d.r); err != nil {
		return r, truncated("error", err)
	}
	if _, err = readUint32Bytes(d.r); err != nil {
		return r, truncated("body", err)
	}

	return r, nil
}

func truncated(field string, err error) error {
	return errs.Codef(errs.CodecError, "truncated record while reading %s: %v", field, err)
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeInt64(w io.Writer, v int64) error {
	return writeUint64(w, uint64(v))
}

func writeString16(w io.Writer, s string) error {
	if err := writeUint16(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeString8(w io.Writer, s string) error {
	if len(s) > maxMethodLen {
		return fmt.Errorf("string too long for u8 length prefix: %d", len(s))
	}
	if _, err := w.Write([]byte{byte(len(s))}); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeUint32Bytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}

func readString16(r io.Reader) (string, error) {
	n, err := readUint16(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func readString8(r io.Reader) (string, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", err
	}
	b := make([]byte, n[0])
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func readUint32Bytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n > maxBodyLen {
		return nil, fmt.Errorf("body length %d exceeds wire maximum", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
