// Package shortvec implements the compact-u16 length prefix used in Solana
// transaction encodings.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

var (
	ErrLenTooLarge  = errors.Errorf("len exceeds %d", math.MaxUint16)
	ErrInvalidLen   = errors.New("invalid shortvec encoded len")
	ErrNonCanonical = errors.New("shortvec encoded len is not canonical")
)

// EncodeLen writes len to w, seven bits per byte with the high bit marking
// continuation.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, ErrLenTooLarge
	}

	var buf [maxEncodedLen]byte
	for {
		buf[n] = byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			n++
			break
		}

		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen reads a len written by EncodeLen from r.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte

	for i := 0; i < maxEncodedLen; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		// A trailing zero byte would encode the same value in more bytes
		if i > 0 && b[0] == 0 {
			return 0, ErrNonCanonical
		}

		val |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrInvalidLen
			}
			return val, nil
		}
	}

	return 0, ErrInvalidLen
}
