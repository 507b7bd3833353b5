package password

import (
	"github.com/alexedwards/argon2id"
)

var DefaultParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes passwords with argon2id and a process-wide pepper. Each call
// to Hash draws a fresh salt.
type Hasher struct {
	pepper string
	params *argon2id.Params
}

func NewHasher(pepper string, params *argon2id.Params) *Hasher {
	if params == nil {
		params = DefaultParams
	}
	return &Hasher{pepper: pepper, params: params}
}

func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain+h.pepper, h.params)
}

// Verify fails closed: a malformed hash is reported as a mismatch.
func (h *Hasher) Verify(plain, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, hash)
	return err == nil && ok
}
