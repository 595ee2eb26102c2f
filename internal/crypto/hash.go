package crypto

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("unsupported password hash version")
)

// Password hashes are stored as "<version>.<salt>.<hash>".
//
//	v1: hex salt, hex HMAC-MD5 of the password keyed with the salt string.
//	    Only verified, never produced.
//	v2: base64 salt, base64 Argon2id key derived with HashParams.
const (
	versionLegacyHMAC = "v1"
	versionArgon2id   = "v2"
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns the parameters bound to the v2 format. Changing
// them requires a new version tag.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// HashPassword derives a salted Argon2id hash of password and encodes it
// together with its salt.
func HashPassword(password string) (string, error) {
	params := DefaultHashParams()

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return strings.Join([]string{
		versionArgon2id,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "."), nil
}

// VerifyPassword recomputes the hash of password with the stored salt and
// compares it in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	version, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	var got []byte
	switch version {
	case versionArgon2id:
		p := DefaultHashParams()
		got = argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(want)))
	case versionLegacyHMAC:
		mac := hmac.New(md5.New, salt)
		mac.Write([]byte(password))
		got = mac.Sum(nil)
	}

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// decodeHash splits an encoded hash into its version, salt and digest. For v1
// the salt is returned as the raw hex string because that is what keyed the HMAC.
func decodeHash(encoded string) (string, []byte, []byte, error) {
	parts := strings.Split(encoded, ".")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", nil, nil, ErrInvalidHashFormat
	}

	switch parts[0] {
	case versionArgon2id:
		salt, err := base64.RawStdEncoding.DecodeString(parts[1])
		if err != nil {
			return "", nil, nil, ErrInvalidHashFormat
		}
		key, err := base64.RawStdEncoding.DecodeString(parts[2])
		if err != nil {
			return "", nil, nil, ErrInvalidHashFormat
		}
		return parts[0], salt, key, nil
	case versionLegacyHMAC:
		sum, err := hex.DecodeString(parts[2])
		if err != nil || len(sum) != md5.Size {
			return "", nil, nil, ErrInvalidHashFormat
		}
		return parts[0], []byte(parts[1]), sum, nil
	default:
		return "", nil, nil, ErrIncompatibleVersion
	}
}
