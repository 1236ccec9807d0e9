// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for new hashes. Stored hashes carry their own
// parameters, so changing these only affects hashes written afterwards
// and triggers a rehash on the next successful login.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16
)

type argonHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h argonHash) derive(password string) []byte {
	//nolint:gosec // G115: key length is bounded by the stored hash
	return argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
}

func (h argonHash) outdated() bool {
	return h.memory != argonMemory ||
		h.time != argonTime ||
		h.threads != argonThreads ||
		len(h.key) != argonKeyLen
}

func parseArgonHash(encoded string) (argonHash, error) {
	var h argonHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return h, fmt.Errorf("parse password hash: unsupported format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return h, fmt.Errorf("parse password hash version: %w", err)
	}
	if version != argon2.Version {
		return h, fmt.Errorf("parse password hash: argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return h, fmt.Errorf("parse password hash params: %w", err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("parse password hash salt: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return h, fmt.Errorf("parse password hash key: %w", err)
	}

	return h, nil
}

// HashPassword returns an encoded argon2id hash in the PHC string format.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	h := argonHash{
		memory:  argonMemory,
		time:    argonTime,
		threads: argonThreads,
		salt:    salt,
		key:     make([]byte, argonKeyLen),
	}
	h.key = h.derive(password)

	return h.String(), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parseArgonHash(encoded)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func timingDummyHash() string {
	dummyHashOnce.Do(func() {
		hash, err := HashPassword("edustack-timing-equalizer")
		if err != nil {
			panic(fmt.Sprintf("security: generate dummy hash: %v", err))
		}
		dummyHash = hash
	})
	return dummyHash
}

// VerifyPasswordTimingSafe checks password against encoded, spending the
// same argon2 work when encoded is missing so unknown accounts are not
// distinguishable by latency. On success it returns a fresh hash when the
// stored one uses outdated parameters, or "" otherwise.
func VerifyPasswordTimingSafe(password string, encoded *string) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _ = VerifyPassword(password, timingDummyHash())
		return false, "", nil
	}

	h, err := parseArgonHash(*encoded)
	if err != nil {
		return false, "", err
	}

	if subtle.ConstantTimeCompare(h.key, h.derive(password)) != 1 {
		return false, "", nil
	}

	if !h.outdated() {
		return true, "", nil
	}

	rehashed, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; a failed rehash keeps the old hash
		return true, "", nil
	}

	return true, rehashed, nil
}
