package account

// PasswordHasher abstracts the one-way credential hash.
// It allows use cases to stay algorithm-agnostic.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}
