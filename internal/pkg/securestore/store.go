// Package securestore persists JSON values as encrypted, expiring, integrity-checked
// envelopes on top of a plain key-value backend.
//
// Each logical key occupies three entries: the ciphertext under key, the expiry in epoch
// milliseconds under key+"_expiry" and the hex SHA-256 of the plaintext under
// key+"_integrity". Reads that fail any check purge all three entries and report a miss.
package securestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTTL = 24 * time.Hour

	expirySuffix    = "_expiry"
	integritySuffix = "_integrity"

	encryptedPrefix = "enc:"
	plainPrefix     = "plain:"
)

var (
	ErrExpired            = errors.New("securestore: entry expired")
	ErrIntegrityViolation = errors.New("securestore: integrity check failed")
	ErrMalformed          = errors.New("securestore: malformed entry")
)

// Store is safe for concurrent use.
type Store struct {
	kv         KV
	keys       *keyCache
	now        func() time.Time
	defaultTTL time.Duration
	fallbacks  atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) { s.defaultTTL = ttl }
}

func New(kv KV, source KeySource, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		keys:       &keyCache{source: source},
		now:        time.Now,
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetItem stores value under key with the default expiration.
func (s *Store) SetItem(ctx context.Context, key string, value any) error {
	return s.SetItemFor(ctx, key, value, s.defaultTTL)
}

// SetItemFor stores value under key, valid for ttl.
func (s *Store) SetItemFor(ctx context.Context, key string, value any, ttl time.Duration) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("securestore: marshal %s: %w", key, err)
	}

	expiry := s.now().Add(ttl).UnixMilli()

	if err := s.kv.Set(ctx, key, s.seal(key, plaintext), ttl); err != nil {
		return fmt.Errorf("securestore: write %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key+expirySuffix, strconv.FormatInt(expiry, 10), ttl); err != nil {
		return fmt.Errorf("securestore: write %s expiry: %w", key, err)
	}
	if err := s.kv.Set(ctx, key+integritySuffix, digest(plaintext), ttl); err != nil {
		return fmt.Errorf("securestore: write %s integrity: %w", key, err)
	}
	return nil
}

// GetItem decodes the value stored under key into dst. It reports false on a miss,
// including expired, tampered or undecodable entries; it never returns an error.
func (s *Store) GetItem(ctx context.Context, key string, dst any) bool {
	rawExpiry, ok, err := s.kv.Get(ctx, key+expirySuffix)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("secure storage read failed")
		return false
	}
	if ok {
		ms, perr := strconv.ParseInt(rawExpiry, 10, 64)
		if perr != nil || s.now().UnixMilli() > ms {
			s.discard(ctx, key, ErrExpired)
			return false
		}
	}

	encoded, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("secure storage read failed")
		return false
	}
	if !ok {
		return false
	}

	plaintext, err := s.open(encoded)
	if err != nil {
		s.discard(ctx, key, err)
		return false
	}

	stored, ok, err := s.kv.Get(ctx, key+integritySuffix)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("secure storage read failed")
		return false
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(digest(plaintext))) != 1 {
		s.discard(ctx, key, ErrIntegrityViolation)
		return false
	}

	if err := json.Unmarshal(plaintext, dst); err != nil {
		s.discard(ctx, key, fmt.Errorf("%w: %v", ErrMalformed, err))
		return false
	}
	return true
}

// RemoveItem deletes all entries belonging to key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key, key+expirySuffix, key+integritySuffix); err != nil {
		return fmt.Errorf("securestore: remove %s: %w", key, err)
	}
	return nil
}

// Fallbacks returns how many writes were stored with the plain encoding because
// encryption was unavailable.
func (s *Store) Fallbacks() int64 {
	return s.fallbacks.Load()
}

func (s *Store) discard(ctx context.Context, key string, reason error) {
	log.Debug().Err(reason).Str("key", key).Msg("secure storage entry discarded")
	if err := s.RemoveItem(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("secure storage purge failed")
	}
}

func (s *Store) seal(key string, plaintext []byte) string {
	sealed, err := s.encrypt(plaintext)
	if err != nil {
		s.fallbacks.Add(1)
		log.Warn().Err(err).Str("key", key).Msg("secure storage encryption unavailable, using plain encoding")
		return plainPrefix + base64.StdEncoding.EncodeToString(plaintext)
	}
	return encryptedPrefix + sealed
}

func (s *Store) encrypt(plaintext []byte) (string, error) {
	aead, err := s.keys.get()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(aead.Seal(nonce, nonce, plaintext, nil)), nil
}

func (s *Store) open(encoded string) ([]byte, error) {
	switch {
	case strings.HasPrefix(encoded, encryptedPrefix):
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, encryptedPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		aead, err := s.keys.get()
		if err != nil {
			return nil, err
		}
		if len(raw) < aead.NonceSize() {
			return nil, ErrMalformed
		}
		n := aead.NonceSize()
		return aead.Open(nil, raw[:n], raw[n:], nil)
	case strings.HasPrefix(encoded, plainPrefix):
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, plainPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return raw, nil
	default:
		return nil, ErrMalformed
	}
}

func digest(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}
