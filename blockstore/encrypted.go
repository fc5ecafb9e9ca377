package blockstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/asabya/fdp-storage/internal/cryptox"
)

// EncryptedRefSize is the length in bytes of an encrypted reference: a plain
// content address followed by the AES-256 decryption key.
const EncryptedRefSize = RefSize + cryptox.KeySize

// ErrUnsealFailed is returned by GetEncrypted when the stored object cannot
// be decrypted with the key half of the reference.
var ErrUnsealFailed = errors.New("cannot open sealed object")

// EncryptedReference is a capability-bearing address: the first 32 bytes
// locate the sealed object, the last 32 bytes decrypt it. Holding the
// reference alone is necessary and sufficient to retrieve the plaintext; no
// separate key distribution is involved. Its 128-character hex form is
// distinguishable from a plain 64-character address by length.
type EncryptedReference []byte

// ParseEncryptedReference validates the shape of an encrypted reference
// string. It does not touch the store.
func ParseEncryptedReference(s string) (EncryptedReference, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != EncryptedRefSize {
		return nil, fmt.Errorf("%w: not an encrypted reference", ErrInvalidReference)
	}
	return EncryptedReference(b), nil
}

func (r EncryptedReference) String() string { return hex.EncodeToString(r) }

// Address returns the content address half of the reference.
func (r EncryptedReference) Address() Reference { return Reference(r[:RefSize]) }

func (r EncryptedReference) key() []byte { return r[RefSize:] }

// PutEncrypted seals data under a fresh random key, stores the ciphertext in
// st and returns the combined address+key reference.
func PutEncrypted(ctx context.Context, st Store, data []byte) (EncryptedReference, error) {
	key, err := cryptox.RandomKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	sealed, err := cryptox.Encrypt(data, key)
	if err != nil {
		return nil, fmt.Errorf("sealing object: %w", err)
	}

	addr, err := st.Put(ctx, sealed)
	if err != nil {
		return nil, err
	}

	ref := make(EncryptedReference, 0, EncryptedRefSize)
	ref = append(ref, addr...)
	ref = append(ref, key...)
	return ref, nil
}

// GetEncrypted retrieves and opens an object stored with PutEncrypted.
func GetEncrypted(ctx context.Context, st Store, ref EncryptedReference) ([]byte, error) {
	if len(ref) != EncryptedRefSize {
		return nil, fmt.Errorf("%w: not an encrypted reference", ErrInvalidReference)
	}

	sealed, err := st.Get(ctx, ref.Address())
	if err != nil {
		return nil, err
	}

	data, err := cryptox.Decrypt(sealed, ref.key())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsealFailed, err)
	}
	return data, nil
}
