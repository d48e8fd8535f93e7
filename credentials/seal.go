package credentials

import (
	"crypto/rand"
	"encoding/base64"

	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sealVersion  = 1
	saltSize     = 16
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// sealedPayload is the on-disk form of an encrypted credential file.
type sealedPayload struct {
	Version int    `json:"v"`
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Data    string `json:"data"`
}

// sealer encrypts file contents with a key derived from a passphrase. The derived key
// is cached per salt because argon2 is deliberately expensive.
type sealer struct {
	passphrase string
	salt       []byte
	key        []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: passphrase}
}

func (s *sealer) keyFor(salt []byte) []byte {
	if s.key != nil && string(s.salt) == string(salt) {
		return s.key
	}
	s.salt = append([]byte(nil), salt...)
	s.key = argon2.IDKey([]byte(s.passphrase), s.salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return s.key
}

func (s *sealer) seal(plaintext []byte) (*sealedPayload, error) {
	salt := s.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, errors.Wrap(err, "[sealer.seal] salt")
		}
	}
	aead, err := chacha20poly1305.NewX(s.keyFor(salt))
	if err != nil {
		return nil, errors.Wrap(err, "[sealer.seal] cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "[sealer.seal] nonce")
	}

	return &sealedPayload{
		Version: sealVersion,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Data:    base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, salt)),
	}, nil
}

func (s *sealer) open(p *sealedPayload) ([]byte, error) {
	if p.Version != sealVersion {
		return nil, errors.Wrapf(apperrors.ErrCredentialsCorrupted, "unsupported sealed version %d", p.Version)
	}
	salt, err := base64.StdEncoding.DecodeString(p.Salt)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, "salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(p.Nonce)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, "nonce")
	}
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, "data")
	}

	aead, err := chacha20poly1305.NewX(s.keyFor(salt))
	if err != nil {
		return nil, errors.Wrap(err, "[sealer.open] cipher")
	}
	if len(nonce) != aead.NonceSize() {
		return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, "nonce size")
	}
	plaintext, err := aead.Open(nil, nonce, data, salt)
	if err != nil {
		return nil, apperrors.ErrInvalidPassphrase
	}
	return plaintext, nil
}
