package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/favnum/internal/testutil"
)

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "alice", want: "alice"},
		{name: "trimmed", in: "  bob\n", want: "bob"},
		{name: "punctuation", in: "ops-admin_2.old", want: "ops-admin_2.old"},
		{name: "nfc", in: "josé", want: "josé"},
		{name: "empty", in: " ", wantErr: true},
		{name: "leading dot", in: ".hidden", wantErr: true},
		{name: "path separator", in: "../etc", wantErr: true},
		{name: "space", in: "a b", wantErr: true},
		{name: "too long", in: string(make([]byte, 65)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAlias(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAlias)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyringCreateLoad(t *testing.T) {
	k := NewKeyring(filepath.Join(t.TempDir(), "keys"))

	id, err := k.Create("alice")
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	priv, err := k.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, id, identityOf(priv))

	info, err := os.Stat(filepath.Join(k.Dir(), "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestKeyringCreateRefusesOverwrite(t *testing.T) {
	k := NewKeyring(t.TempDir())

	first, err := k.Create("alice")
	require.NoError(t, err)

	_, err = k.Create("alice")
	assert.ErrorIs(t, err, ErrKeyExists)

	priv, err := k.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, first, identityOf(priv))
}

func TestKeyringNormalizesOnLoad(t *testing.T) {
	k := NewKeyring(t.TempDir())

	id, err := k.Create("josé")
	require.NoError(t, err)

	got, err := k.Resolve("josé")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestKeyringLoadMissing(t *testing.T) {
	k := NewKeyring(t.TempDir())

	_, err := k.Load("nobody")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeyringImportDeterministic(t *testing.T) {
	k := NewKeyring(t.TempDir())

	id, err := k.Import("B", testutil.Keypair("B"))
	require.NoError(t, err)
	assert.Equal(t, testutil.Identity("B"), id)
}

func TestKeyringList(t *testing.T) {
	k := NewKeyring(t.TempDir())

	entries, err := k.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = k.Import("zed", testutil.Keypair("zed"))
	require.NoError(t, err)
	_, err = k.Import("amy", testutil.Keypair("amy"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(k.Dir(), "notes.txt"), []byte("x"), 0o600))

	entries, err = k.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "amy", entries[0].Alias)
	assert.Equal(t, testutil.Identity("amy"), entries[0].Identity)
	assert.Equal(t, "zed", entries[1].Alias)
}

func TestKeyringListMissingDir(t *testing.T) {
	k := NewKeyring(filepath.Join(t.TempDir(), "absent"))

	entries, err := k.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveHexIdentity(t *testing.T) {
	k := NewKeyring(t.TempDir())
	want := testutil.Identity("C")

	got, err := k.Resolve(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveUnknownAlias(t *testing.T) {
	k := NewKeyring(t.TempDir())

	_, err := k.Resolve("ghost")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLoadKeyFileRejectsBadContent(t *testing.T) {
	dir := t.TempDir()

	notHex := filepath.Join(dir, "a.key")
	require.NoError(t, os.WriteFile(notHex, []byte("zz"), 0o600))
	_, err := LoadKeyFile(notHex)
	assert.Error(t, err)

	short := filepath.Join(dir, "b.key")
	require.NoError(t, os.WriteFile(short, []byte("abcd"), 0o600))
	_, err = LoadKeyFile(short)
	assert.ErrorContains(t, err, "seed must be 32 bytes")
}
