package securestore

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// Mode selects how the storage key is obtained.
type Mode string

const (
	// ModeRelease derives the key from a passphrase so entries survive restarts.
	ModeRelease Mode = "release"
	// ModeDebug uses a random per-process key.
	ModeDebug Mode = "debug"
)

const pbkdf2Iterations = 100_000

var ErrEmptyPassphrase = errors.New("securestore: empty passphrase")

// KeySource produces the raw symmetric key.
type KeySource func() ([]byte, error)

// PassphraseKey derives a key with PBKDF2-SHA256.
func PassphraseKey(passphrase, salt string) KeySource {
	return func() ([]byte, error) {
		if passphrase == "" {
			return nil, ErrEmptyPassphrase
		}
		return pbkdf2.Key([]byte(passphrase), []byte(salt), pbkdf2Iterations, chacha20poly1305.KeySize, sha256.New), nil
	}
}

// RandomKey generates a fresh key that never leaves the process.
func RandomKey() KeySource {
	return func() ([]byte, error) {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		return key, nil
	}
}

// KeySourceFor maps a configured mode to its key source.
func KeySourceFor(mode Mode, passphrase, salt string) KeySource {
	if mode == ModeRelease {
		return PassphraseKey(passphrase, salt)
	}
	return RandomKey()
}

// keyCache derives the AEAD at most once; callers racing on first use share the result.
type keyCache struct {
	once   sync.Once
	source KeySource
	aead   cipher.AEAD
	err    error
}

func (k *keyCache) get() (cipher.AEAD, error) {
	k.once.Do(func() {
		key, err := k.source()
		if err != nil {
			k.err = err
			return
		}
		k.aead, k.err = chacha20poly1305.New(key)
	})
	return k.aead, k.err
}
