package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/solana/shortvec"
)

// ToBase58 returns the transaction id as it is shown by explorers and the RPC
// surface.
func (s Signature) ToBase58() string {
	return base58.Encode(s[:])
}

func SignatureFromBase58(encoded string) (Signature, error) {
	var sig Signature

	decoded, err := base58.Decode(encoded)
	if err != nil {
		return sig, errors.Wrap(err, "invalid base58 signature")
	}
	if len(decoded) != len(sig) {
		return sig, errors.Errorf("invalid signature length: %d", len(decoded))
	}

	copy(sig[:], decoded)
	return sig, nil
}

// Marshal returns the legacy wire encoding: shortvec signatures followed by
// the message.
func (t Transaction) Marshal() []byte {
	var buf bytes.Buffer
	writeLen(&buf, len(t.Signatures))
	for _, sig := range t.Signatures {
		buf.Write(sig[:])
	}
	buf.Write(t.Message.Marshal())
	return buf.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := &decoder{buf: bytes.NewBuffer(b)}

	count := d.len("signature count")
	signatures := make([]Signature, count)
	for i := range signatures {
		d.read(signatures[i][:], "signature")
	}
	if d.err != nil {
		return d.err
	}

	t.Signatures = signatures
	return t.Message.Unmarshal(d.buf.Bytes())
}

// Marshal returns the bytes that signers sign.
func (m Message) Marshal() []byte {
	var buf bytes.Buffer

	buf.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	writeLen(&buf, len(m.Accounts))
	for _, account := range m.Accounts {
		buf.Write(account)
	}

	buf.Write(m.RecentBlockhash[:])

	writeLen(&buf, len(m.Instructions))
	for _, instruction := range m.Instructions {
		buf.WriteByte(instruction.ProgramIndex)
		writeLen(&buf, len(instruction.Accounts))
		buf.Write(instruction.Accounts)
		writeLen(&buf, len(instruction.Data))
		buf.Write(instruction.Data)
	}

	return buf.Bytes()
}

// Unmarshal decodes a legacy message. Versioned messages, which set the high
// bit of the first byte, are rejected.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	d := &decoder{buf: bytes.NewBuffer(b)}

	var decoded Message
	decoded.Header = Header{
		NumSignatures:     d.byte("num signatures"),
		NumReadonlySigned: d.byte("num readonly signed"),
		NumReadOnly:       d.byte("num readonly"),
	}

	decoded.Accounts = make([]ed25519.PublicKey, d.len("account count"))
	for i := range decoded.Accounts {
		decoded.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		d.read(decoded.Accounts[i], "account")
	}

	d.read(decoded.RecentBlockhash[:], "recent blockhash")

	decoded.Instructions = make([]CompiledInstruction, d.len("instruction count"))
	for i := range decoded.Instructions {
		c := &decoded.Instructions[i]

		c.ProgramIndex = d.byte("program index")
		c.Accounts = make([]byte, d.len("instruction account count"))
		d.read(c.Accounts, "instruction accounts")
		c.Data = make([]byte, d.len("instruction data length"))
		d.read(c.Data, "instruction data")

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
	if d.buf.Len() > 0 {
		return errors.Errorf("%d trailing bytes after message", d.buf.Len())
	}

	*m = decoded
	return nil
}

func writeLen(buf *bytes.Buffer, n int) {
	// Lengths are bounded well below the shortvec limit by MaxTransactionSize.
	_, _ = shortvec.EncodeLen(buf, n)
}

// decoder reads sequential fields, remembering the first failure so callers
// can check once per section.
type decoder struct {
	buf *bytes.Buffer
	err error
}

func (d *decoder) byte(field string) byte {
	if d.err != nil {
		return 0
	}

	b, err := d.buf.ReadByte()
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
	return b
}

func (d *decoder) len(field string) int {
	if d.err != nil {
		return 0
	}

	n, err := shortvec.DecodeLen(d.buf)
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
		return 0
	}
	if n > d.buf.Len() {
		// Every counted item occupies at least one byte.
		d.err = errors.Errorf("%s %d exceeds remaining %d bytes", field, n, d.buf.Len())
		return 0
	}
	return n
}

func (d *decoder) read(dst []byte, field string) {
	if d.err != nil {
		return
	}

	if _, err := io.ReadFull(d.buf, dst); err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
}
