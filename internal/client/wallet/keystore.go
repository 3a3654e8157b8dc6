// Package wallet manages the client-side identity: an ed25519 key kept in
// a passphrase-encrypted keystore file, and the connect/disconnect session
// that gates every paid operation.
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/modelmart/modelmart/internal/icp"
)

var (
	ErrKeystoreNotFound = errors.New("keystore not found")
	ErrBadPassphrase    = errors.New("bad passphrase")
)

// Identity is a signing identity with a resolved principal.
type Identity interface {
	Principal() icp.Principal
	PublicKeyDER() []byte
	Sign(msg []byte) ([]byte, error)
}

type keyIdentity struct {
	priv      ed25519.PrivateKey
	der       []byte
	principal icp.Principal
}

func newKeyIdentity(priv ed25519.PrivateKey) *keyIdentity {
	der := icp.Ed25519DER(priv.Public().(ed25519.PublicKey))
	return &keyIdentity{
		priv:      priv,
		der:       der,
		principal: icp.SelfAuthenticating(der),
	}
}

func (k *keyIdentity) Principal() icp.Principal { return k.principal }

func (k *keyIdentity) PublicKeyDER() []byte {
	out := make([]byte, len(k.der))
	copy(out, k.der)
	return out
}

func (k *keyIdentity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, msg), nil
}

// keystoreFile is the on-disk JSON envelope around the encrypted seed.
type keystoreFile struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveFileKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// CreateKeystore generates a fresh ed25519 seed, encrypts it with a key
// derived from the passphrase (argon2id + AES-GCM), writes it to path and
// returns the identity.
func CreateKeystore(path string, passphrase []byte) (Identity, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(deriveFileKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	ciphertext := aesgcm.Seal(nil, nonce, seed, nil)

	data, err := json.Marshal(keystoreFile{Salt: salt, Nonce: nonce, Ciphertext: ciphertext})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write keystore: %w", err)
	}

	return newKeyIdentity(ed25519.NewKeyFromSeed(seed)), nil
}

// OpenKeystore decrypts the keystore at path with the passphrase.
// A wrong passphrase surfaces as ErrBadPassphrase (the AEAD open fails).
func OpenKeystore(path string, passphrase []byte) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeystoreNotFound
		}
		return nil, err
	}

	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("malformed keystore: %w", err)
	}

	block, err := aes.NewCipher(deriveFileKey(passphrase, kf.Salt))
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	seed, err := aesgcm.Open(nil, kf.Nonce, kf.Ciphertext, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("malformed keystore: seed length %d", len(seed))
	}

	return newKeyIdentity(ed25519.NewKeyFromSeed(seed)), nil
}
