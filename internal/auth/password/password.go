// Package password stores login passwords as PHC-encoded Argon2id hashes.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type params struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var defaults = params{memory: 64 * 1024, time: 1, threads: 4, keyLen: 32}

const saltLen = 16

var b64 = base64.RawStdEncoding

// Hash returns $argon2id$v=19$m=..,t=..,p=..$salt$key with a fresh salt.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := derive(plain, salt, defaults)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, defaults.memory, defaults.time, defaults.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether plain matches encoded. Malformed hashes never match.
func Verify(plain, encoded string) bool {
	p, salt, key, ok := decode(encoded)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare(key, derive(plain, salt, p)) == 1
}

func derive(plain string, salt []byte, p params) []byte {
	return argon2.IDKey([]byte(plain), salt, p.time, p.memory, p.threads, p.keyLen)
}

func decode(encoded string) (params, []byte, []byte, bool) {
	var p params
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, false
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, false
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}
	p.keyLen = uint32(len(key))
	return p, salt, key, true
}
