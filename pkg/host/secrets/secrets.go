// Package secrets manages the host's access keys: one master key for
// the host itself and named keys per function. Keys are provisioned
// lazily on first read and persisted in the host database, so a
// restarted host hands out the same secrets. Enforcing the keys on
// incoming requests is the data plane's concern, not this package's.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/jvano/azure-webjobs-sdk-script/internal/repository"
)

const (
	// MasterKeyName is the reserved name of the host master key.
	MasterKeyName = "master"

	// DefaultKeyName is the key provisioned for every function on
	// first access.
	DefaultKeyName = "default"

	// DatabaseFileName is the file holding the key database inside the
	// secrets directory.
	DatabaseFileName = "secrets.db"

	// secretLength is the raw entropy per key before encoding.
	secretLength = 40
)

var (
	ErrSecretNotFound  = errors.New("secret not found")
	ErrInvalidKeyName  = errors.New("invalid key name")
	ErrReservedKeyName = errors.New("key name is reserved")
)

// Key is one named secret.
type Key struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store reads and writes keys through the host database.
type Store struct {
	db repository.KeyValueStore
}

// NewStore creates a Store over an open database.
func NewStore(db repository.KeyValueStore) *Store {
	return &Store{db: db}
}

// MasterKey returns the host master key, generating and persisting it
// on first access.
func (s *Store) MasterKey() (Key, error) {
	return s.ensureKey(hostKeyID(MasterKeyName), MasterKeyName)
}

// FunctionKeys returns every key of a function sorted by name. The
// default key is provisioned if the function has none yet.
func (s *Store) FunctionKeys(function string) ([]Key, error) {
	if err := validateName(function); err != nil {
		return nil, err
	}

	keys, err := s.listPrefix(functionKeyPrefix(function))
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		return keys, nil
	}

	key, err := s.ensureKey(functionKeyID(function, DefaultKeyName), DefaultKeyName)
	if err != nil {
		return nil, err
	}
	return []Key{key}, nil
}

// CreateFunctionKey creates a named key for a function, or rotates its
// value if the name already exists.
func (s *Store) CreateFunctionKey(function, name string) (Key, error) {
	if err := validateName(function); err != nil {
		return Key{}, err
	}
	if err := validateName(name); err != nil {
		return Key{}, err
	}
	if strings.EqualFold(name, MasterKeyName) {
		return Key{}, fmt.Errorf("%w: '%s'", ErrReservedKeyName, name)
	}

	key, err := newKey(name)
	if err != nil {
		return Key{}, err
	}
	if err := s.putKey(functionKeyID(function, name), key); err != nil {
		return Key{}, err
	}
	return key, nil
}

// DeleteFunctionKey removes a named key. The default key can be deleted
// but will be re-provisioned on the next read.
func (s *Store) DeleteFunctionKey(function, name string) error {
	if err := validateName(function); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	id := functionKeyID(function, name)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(id); err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: '%s' for function '%s'", ErrSecretNotFound, name, function)
		} else if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		return txn.Delete(id)
	})
}

// RotateMasterKey replaces the master key value and returns the new key.
func (s *Store) RotateMasterKey() (Key, error) {
	key, err := newKey(MasterKeyName)
	if err != nil {
		return Key{}, err
	}
	if err := s.putKey(hostKeyID(MasterKeyName), key); err != nil {
		return Key{}, err
	}
	return key, nil
}

// ensureKey returns the stored key at id, creating it inside the same
// transaction when absent so concurrent first reads agree on one value.
func (s *Store) ensureKey(id []byte, name string) (Key, error) {
	var key Key

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(id)
		if err == nil {
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &key)
			})
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("database error: %w", err)
		}

		key, err = newKey(name)
		if err != nil {
			return err
		}
		val, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("failed to marshal key: %w", err)
		}
		return txn.Set(id, val)
	})
	if err != nil {
		return Key{}, err
	}
	return key, nil
}

func (s *Store) putKey(id []byte, key Key) error {
	val, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(id, val)
	})
}

func (s *Store) listPrefix(prefix []byte) ([]Key, error) {
	var keys []Key

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var key Key
				if err := json.Unmarshal(val, &key); err != nil {
					return fmt.Errorf("failed to unmarshal key: %w", err)
				}
				keys = append(keys, key)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys, nil
}

func newKey(name string) (Key, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return Key{}, fmt.Errorf("failed to generate secret: %w", err)
	}
	return Key{
		Name:      name,
		Value:     base64.RawURLEncoding.EncodeToString(secret),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// validateName rejects names that would collide with the key layout.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/:") {
		return fmt.Errorf("%w: '%s'", ErrInvalidKeyName, name)
	}
	return nil
}

func hostKeyID(name string) []byte {
	return []byte(fmt.Sprintf("secret:host/%s", name))
}

func functionKeyPrefix(function string) []byte {
	return []byte(fmt.Sprintf("secret:function/%s/", function))
}

func functionKeyID(function, name string) []byte {
	return append(functionKeyPrefix(function), name...)
}
