package secrets

// Kind discriminates the active signing material variant.
type Kind int

const (
	// KindSharedSecret signs and verifies with one shared byte string.
	KindSharedSecret Kind = iota
	// KindKeyPair signs with a private key and verifies with its public half.
	KindKeyPair
)

// Material is an immutable snapshot of the signing material. Exactly one
// variant is populated; a snapshot is replaced wholesale, never mutated,
// so readers holding a pointer always see consistent key bytes.
type Material struct {
	Kind          Kind
	Secret        []byte
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
}
