package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/solana/shortvec"
)

// Legacy messages never set the high bit of the first header byte
const versionedMessagePrefix = 0x80

func (t Transaction) Marshal() []byte {
	var e encoder
	e.vec(len(t.Signatures))
	for _, s := range t.Signatures {
		e.raw(s[:])
	}
	e.raw(t.Message.Marshal())
	return e.buf.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := newDecoder(b)

	signatures := make([]Signature, d.vec("signatures"))
	for i := range signatures {
		d.fill(signatures[i][:], "signature")
	}
	if d.err != nil {
		return d.err
	}

	t.Signatures = signatures
	return t.Message.Unmarshal(d.buf.Bytes())
}

// Marshal encodes the message in the legacy wire format. These are the bytes
// each signer signs.
func (m Message) Marshal() []byte {
	var e encoder

	e.u8(m.Header.NumSignatures)
	e.u8(m.Header.NumReadonlySigned)
	e.u8(m.Header.NumReadOnly)

	e.vec(len(m.Accounts))
	for _, a := range m.Accounts {
		e.raw(a)
	}

	e.raw(m.RecentBlockhash[:])

	e.vec(len(m.Instructions))
	for _, i := range m.Instructions {
		e.u8(i.ProgramIndex)

		e.vec(len(i.Accounts))
		e.raw(i.Accounts)

		e.vec(len(i.Data))
		e.raw(i.Data)
	}

	return e.buf.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&versionedMessagePrefix != 0 {
		return errors.New("versioned messages not supported")
	}

	var decoded Message
	d := newDecoder(b)

	decoded.Header = Header{
		NumSignatures:     d.u8("num signatures"),
		NumReadonlySigned: d.u8("num readonly signatures"),
		NumReadOnly:       d.u8("num readonly"),
	}

	decoded.Accounts = make([]ed25519.PublicKey, d.vec("accounts"))
	for i := range decoded.Accounts {
		decoded.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		d.fill(decoded.Accounts[i], "account")
	}
	if d.err != nil {
		return d.err
	}

	if int(decoded.Header.NumSignatures) > len(decoded.Accounts) {
		return errors.Errorf("more signatures than accounts: %d:%d", decoded.Header.NumSignatures, len(decoded.Accounts))
	}

	d.fill(decoded.RecentBlockhash[:], "recent blockhash")

	decoded.Instructions = make([]CompiledInstruction, d.vec("instructions"))
	for i := range decoded.Instructions {
		c := &decoded.Instructions[i]

		c.ProgramIndex = d.u8("program index")
		c.Accounts = make([]byte, d.vec("instruction accounts"))
		d.fill(c.Accounts, "instruction accounts")
		c.Data = make([]byte, d.vec("instruction data"))
		d.fill(c.Data, "instruction data")
		if d.err != nil {
			return errors.Wrapf(d.err, "instruction %d", i)
		}

		if int(c.ProgramIndex) >= len(decoded.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= len(decoded.Accounts) {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}
	}
	if d.err != nil {
		return d.err
	}

	*m = decoded
	return nil
}

type encoder struct {
	buf bytes.Buffer
}

// Writes to a bytes.Buffer never fail
func (e *encoder) u8(v byte) {
	_ = e.buf.WriteByte(v)
}

func (e *encoder) raw(v []byte) {
	_, _ = e.buf.Write(v)
}

func (e *encoder) vec(length int) {
	_, _ = shortvec.EncodeLen(&e.buf, length)
}

// decoder reads wire fields until the first failure, after which every read
// is a no-op and err holds the failure
type decoder struct {
	buf *bytes.Buffer
	err error
}

func newDecoder(b []byte) *decoder {
	return &decoder{buf: bytes.NewBuffer(b)}
}

func (d *decoder) u8(field string) byte {
	if d.err != nil {
		return 0
	}

	v, err := d.buf.ReadByte()
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
	return v
}

func (d *decoder) vec(field string) int {
	if d.err != nil {
		return 0
	}

	length, err := shortvec.DecodeLen(d.buf)
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s length", field)
		return 0
	}
	return length
}

func (d *decoder) fill(dst []byte, field string) {
	if d.err != nil {
		return
	}

	if _, err := io.ReadFull(d.buf, dst); err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
}
