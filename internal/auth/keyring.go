package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/favnum/internal/ir"
)

const (
	keyExt         = ".key"
	maxAliasLength = 64
)

var (
	// ErrKeyNotFound is returned when an alias has no key in the keyring.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists is returned when creating an alias that already exists.
	ErrKeyExists = errors.New("key already exists")

	// ErrInvalidAlias is returned for aliases that cannot name a key file.
	ErrInvalidAlias = errors.New("invalid alias")
)

// Keyring is a directory of ed25519 seeds named <alias>.key.
type Keyring struct {
	dir string
}

// KeyEntry is one alias in the keyring.
type KeyEntry struct {
	Alias    string      `json:"alias"`
	Identity ir.Identity `json:"identity"`
}

// NewKeyring returns a keyring rooted at dir. The directory is created on
// first write.
func NewKeyring(dir string) *Keyring {
	return &Keyring{dir: dir}
}

// Dir returns the keyring directory.
func (k *Keyring) Dir() string {
	return k.dir
}

// NormalizeAlias returns the NFC form of alias after checking that it is a
// usable file name: letters, digits, '-', '_' and '.', not starting with '.'.
func NormalizeAlias(alias string) (string, error) {
	a := norm.NFC.String(strings.TrimSpace(alias))
	if a == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAlias)
	}
	if len(a) > maxAliasLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidAlias, maxAliasLength)
	}
	if a[0] == '.' {
		return "", fmt.Errorf("%w: %q starts with '.'", ErrInvalidAlias, a)
	}
	for _, r := range a {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return "", fmt.Errorf("%w: %q contains %q", ErrInvalidAlias, a, r)
	}
	return a, nil
}

// Create generates a new keypair under alias and returns its identity.
func (k *Keyring) Create(alias string) (ir.Identity, error) {
	a, err := NormalizeAlias(alias)
	if err != nil {
		return ir.Identity{}, err
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return ir.Identity{}, fmt.Errorf("generate key: %w", err)
	}
	if err := k.write(a, priv); err != nil {
		return ir.Identity{}, err
	}
	return identityOf(priv), nil
}

// Import stores an existing private key under alias.
func (k *Keyring) Import(alias string, priv ed25519.PrivateKey) (ir.Identity, error) {
	a, err := NormalizeAlias(alias)
	if err != nil {
		return ir.Identity{}, err
	}
	if len(priv) != ed25519.PrivateKeySize {
		return ir.Identity{}, fmt.Errorf("import %q: private key must be %d bytes", a, ed25519.PrivateKeySize)
	}
	if err := k.write(a, priv); err != nil {
		return ir.Identity{}, err
	}
	return identityOf(priv), nil
}

func (k *Keyring) write(alias string, priv ed25519.PrivateKey) error {
	if err := os.MkdirAll(k.dir, 0o700); err != nil {
		return fmt.Errorf("create keyring: %w", err)
	}
	f, err := os.OpenFile(k.path(alias), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrKeyExists, alias)
	}
	if err != nil {
		return fmt.Errorf("create key %q: %w", alias, err)
	}
	if _, err := f.WriteString(hex.EncodeToString(priv.Seed()) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write key %q: %w", alias, err)
	}
	return f.Close()
}

// Load returns the private key stored under alias.
func (k *Keyring) Load(alias string) (ed25519.PrivateKey, error) {
	a, err := NormalizeAlias(alias)
	if err != nil {
		return nil, err
	}
	priv, err := LoadKeyFile(k.path(a))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, a)
	}
	return priv, err
}

// List returns every key in the keyring sorted by alias. A missing keyring
// directory is an empty keyring.
func (k *Keyring) List() ([]KeyEntry, error) {
	entries, err := os.ReadDir(k.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}

	var out []KeyEntry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != keyExt {
			continue
		}
		alias := strings.TrimSuffix(e.Name(), keyExt)
		priv, err := LoadKeyFile(filepath.Join(k.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, KeyEntry{Alias: alias, Identity: identityOf(priv)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

// Resolve maps ref to an identity. ref is either a 64-character hex
// identity or an alias in the keyring.
func (k *Keyring) Resolve(ref string) (ir.Identity, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) == 2*ir.IdentitySize {
		if id, err := ir.ParseIdentity(ref); err == nil {
			return id, nil
		}
	}
	priv, err := k.Load(ref)
	if err != nil {
		return ir.Identity{}, fmt.Errorf("resolve %q: %w", ref, err)
	}
	return identityOf(priv), nil
}

func (k *Keyring) path(alias string) string {
	return filepath.Join(k.dir, alias+keyExt)
}

// LoadKeyFile reads a hex-encoded ed25519 seed from path.
func LoadKeyFile(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode key %s: %w", path, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("decode key %s: seed must be %d bytes, got %d", path, ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func identityOf(priv ed25519.PrivateKey) ir.Identity {
	id, _ := ir.IdentityFromPublicKey(priv.Public().(ed25519.PublicKey))
	return id
}
