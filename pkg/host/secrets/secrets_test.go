package secrets

import (
	"encoding/base64"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvano/azure-webjobs-sdk-script/internal/repository"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(repository.NewBadgerStore(db))
}

func TestMasterKeyProvisionedLazily(t *testing.T) {
	store := setupTestStore(t)

	key, err := store.MasterKey()
	require.NoError(t, err)
	assert.Equal(t, MasterKeyName, key.Name)
	assert.NotEmpty(t, key.Value)
	assert.False(t, key.CreatedAt.IsZero())

	// The generated value must decode back to the full entropy.
	raw, err := base64.RawURLEncoding.DecodeString(key.Value)
	require.NoError(t, err)
	assert.Len(t, raw, secretLength)

	// A second read returns the same key, not a fresh one.
	again, err := store.MasterKey()
	require.NoError(t, err)
	assert.Equal(t, key.Value, again.Value)
	assert.Equal(t, key.CreatedAt, again.CreatedAt)
}

func TestRotateMasterKeyChangesValue(t *testing.T) {
	store := setupTestStore(t)

	before, err := store.MasterKey()
	require.NoError(t, err)

	rotated, err := store.RotateMasterKey()
	require.NoError(t, err)
	assert.NotEqual(t, before.Value, rotated.Value)

	after, err := store.MasterKey()
	require.NoError(t, err)
	assert.Equal(t, rotated.Value, after.Value)
}

func TestFunctionKeysProvisionDefault(t *testing.T) {
	store := setupTestStore(t)

	keys, err := store.FunctionKeys("HttpTrigger")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, DefaultKeyName, keys[0].Name)

	// Provisioning is per function.
	other, err := store.FunctionKeys("QueueTrigger")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.NotEqual(t, keys[0].Value, other[0].Value)

	// Re-reading does not mint a second default.
	again, err := store.FunctionKeys("HttpTrigger")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, keys[0].Value, again[0].Value)
}

func TestCreateFunctionKey(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.CreateFunctionKey("HttpTrigger", "deploy")
	require.NoError(t, err)
	assert.Equal(t, "deploy", created.Name)

	keys, err := store.FunctionKeys("HttpTrigger")
	require.NoError(t, err)
	// The explicit key predates the lazy default here, so no default is
	// provisioned alongside it.
	require.Len(t, keys, 1)
	assert.Equal(t, "deploy", keys[0].Name)

	// Creating an existing name rotates it.
	rotated, err := store.CreateFunctionKey("HttpTrigger", "deploy")
	require.NoError(t, err)
	assert.NotEqual(t, created.Value, rotated.Value)
}

func TestFunctionKeysSortedByName(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateFunctionKey("Fn", "zeta")
	require.NoError(t, err)
	_, err = store.CreateFunctionKey("Fn", "alpha")
	require.NoError(t, err)

	keys, err := store.FunctionKeys("Fn")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "alpha", keys[0].Name)
	assert.Equal(t, "zeta", keys[1].Name)
}

func TestDeleteFunctionKey(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateFunctionKey("Fn", "deploy")
	require.NoError(t, err)
	require.NoError(t, store.DeleteFunctionKey("Fn", "deploy"))

	err = store.DeleteFunctionKey("Fn", "deploy")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestDeletedDefaultKeyIsReprovisioned(t *testing.T) {
	store := setupTestStore(t)

	keys, err := store.FunctionKeys("Fn")
	require.NoError(t, err)
	original := keys[0].Value

	require.NoError(t, store.DeleteFunctionKey("Fn", DefaultKeyName))

	keys, err = store.FunctionKeys("Fn")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, DefaultKeyName, keys[0].Name)
	assert.NotEqual(t, original, keys[0].Value)
}

func TestKeyNameValidation(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateFunctionKey("Fn", "")
	assert.ErrorIs(t, err, ErrInvalidKeyName)

	_, err = store.CreateFunctionKey("Fn", "bad/name")
	assert.ErrorIs(t, err, ErrInvalidKeyName)

	_, err = store.CreateFunctionKey("fn/../other", "ok")
	assert.ErrorIs(t, err, ErrInvalidKeyName)

	_, err = store.CreateFunctionKey("Fn", "master")
	assert.ErrorIs(t, err, ErrReservedKeyName)
	_, err = store.CreateFunctionKey("Fn", "Master")
	assert.ErrorIs(t, err, ErrReservedKeyName)
}

func TestKeysSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	store := NewStore(repository.NewBadgerStore(db))
	master, err := store.MasterKey()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = badger.Open(opts)
	require.NoError(t, err)
	defer db.Close()

	store = NewStore(repository.NewBadgerStore(db))
	reopened, err := store.MasterKey()
	require.NoError(t, err)
	assert.Equal(t, master.Value, reopened.Value)
}
