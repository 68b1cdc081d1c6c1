package cipher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"google.golang.org/protobuf/encoding/protowire"
)

const formatVersion = 1

const (
	fieldVersion    protowire.Number = 1
	fieldKeyID      protowire.Number = 2
	fieldWrappedDEK protowire.Number = 3
	fieldNonce      protowire.Number = 4
	fieldCiphertext protowire.Number = 5
)

var errMalformed = errors.New("malformed envelope")

type envelope struct {
	version    uint64
	keyID      string
	wrappedDEK []byte
	nonce      []byte
	ciphertext []byte
}

func (e envelope) marshal() []byte {
	b := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, e.version)
	b = protowire.AppendTag(b, fieldKeyID, protowire.BytesType)
	b = protowire.AppendString(b, e.keyID)
	b = protowire.AppendTag(b, fieldWrappedDEK, protowire.BytesType)
	b = protowire.AppendBytes(b, e.wrappedDEK)
	b = protowire.AppendTag(b, fieldNonce, protowire.BytesType)
	b = protowire.AppendBytes(b, e.nonce)
	b = protowire.AppendTag(b, fieldCiphertext, protowire.BytesType)
	b = protowire.AppendBytes(b, e.ciphertext)
	return b
}

func unmarshalEnvelope(b []byte) (envelope, error) {
	var (
		env  envelope
		seen = make(map[protowire.Number]bool, 5)
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return envelope{}, fmt.Errorf("%w: %w", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		if seen[num] {
			return envelope{}, fmt.Errorf("%w: duplicate field %d", errMalformed, num)
		}
		seen[num] = true

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			env.version, n = protowire.ConsumeVarint(b)
		case typ == protowire.BytesType && num >= fieldKeyID && num <= fieldCiphertext:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				env.setBytes(num, v)
			}
		default:
			return envelope{}, fmt.Errorf("%w: unexpected field %d", errMalformed, num)
		}
		if n < 0 {
			return envelope{}, fmt.Errorf("%w: %w", errMalformed, protowire.ParseError(n))
		}
		b = b[n:]
	}

	if env.version != formatVersion {
		return envelope{}, fmt.Errorf("%w: unsupported version %d", errMalformed, env.version)
	}
	if env.keyID == "" {
		return envelope{}, fmt.Errorf("%w: missing key id", errMalformed)
	}
	if len(env.wrappedDEK) == 0 || len(env.ciphertext) < chacha20poly1305.Overhead {
		return envelope{}, fmt.Errorf("%w: missing key or ciphertext", errMalformed)
	}
	if len(env.nonce) != chacha20poly1305.NonceSizeX {
		return envelope{}, fmt.Errorf("%w: nonce has %d bytes", errMalformed, len(env.nonce))
	}
	return env, nil
}

func (e *envelope) setBytes(num protowire.Number, v []byte) {
	v = append([]byte(nil), v...)
	switch num {
	case fieldKeyID:
		e.keyID = string(v)
	case fieldWrappedDEK:
		e.wrappedDEK = v
	case fieldNonce:
		e.nonce = v
	case fieldCiphertext:
		e.ciphertext = v
	}
}
