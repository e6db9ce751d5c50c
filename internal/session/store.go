package session

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/hrmskit/sessiond/internal/identity"
)

// DefaultNamespace prefixes every session key so the storage area can be
// shared with unrelated applications.
const DefaultNamespace = "hrms_auth."

const (
	tokenKeySuffix        = "access_token"
	refreshTokenKeySuffix = "refresh_token"
	userKeySuffix         = "user"
)

// Store is the namespaced persistence wrapper for the token pair and the
// cached user. Every operation degrades instead of failing: corrupt or
// missing entries read as zero values, and write failures are logged and
// swallowed so persistence trouble never crashes the session flow.
type Store struct {
	storage KeyValue
	prefix  string
	logger  *zap.Logger
}

// NewStore wraps a storage area under the default namespace.
func NewStore(storage KeyValue, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, prefix: DefaultNamespace, logger: logger}
}

// Token returns the persisted access token, or empty.
func (store *Store) Token() string {
	return store.read(tokenKeySuffix)
}

// SetToken persists the access token, overwriting any previous session entry.
func (store *Store) SetToken(value string) {
	store.write(tokenKeySuffix, value)
}

// RemoveToken deletes the persisted access token.
func (store *Store) RemoveToken() {
	store.remove(tokenKeySuffix)
}

// RefreshToken returns the persisted refresh token, or empty.
func (store *Store) RefreshToken() string {
	return store.read(refreshTokenKeySuffix)
}

// SetRefreshToken persists the refresh token.
func (store *Store) SetRefreshToken(value string) {
	store.write(refreshTokenKeySuffix, value)
}

// RemoveRefreshToken deletes the persisted refresh token.
func (store *Store) RemoveRefreshToken() {
	store.remove(refreshTokenKeySuffix)
}

// User returns the cached user, or nil when absent or corrupt.
func (store *Store) User() *identity.User {
	serialized := store.read(userKeySuffix)
	if serialized == "" {
		return nil
	}
	user := &identity.User{}
	if unmarshalErr := json.Unmarshal([]byte(serialized), user); unmarshalErr != nil {
		store.logger.Debug("cached user entry is corrupt",
			zap.String("code", "session.store.corrupt_user"))
		return nil
	}
	return user
}

// SetUser caches the user as JSON.
func (store *Store) SetUser(user *identity.User) {
	if user == nil {
		store.remove(userKeySuffix)
		return
	}
	serialized, marshalErr := json.Marshal(user)
	if marshalErr != nil {
		store.logger.Warn("failed to encode cached user",
			zap.String("code", "session.store.encode_user"),
			zap.Error(marshalErr))
		return
	}
	store.write(userKeySuffix, string(serialized))
}

// RemoveUser deletes the cached user.
func (store *Store) RemoveUser() {
	store.remove(userKeySuffix)
}

// ClearAll removes every key under the namespace prefix, and only those keys.
func (store *Store) ClearAll() {
	keys, keysErr := store.storage.Keys()
	if keysErr != nil {
		store.logger.Warn("failed to enumerate session keys",
			zap.String("code", "session.store.keys_failure"),
			zap.Error(keysErr))
		return
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, store.prefix) {
			continue
		}
		if deleteErr := store.storage.Delete(key); deleteErr != nil {
			store.logger.Warn("failed to delete session key",
				zap.String("code", "session.store.delete_failure"),
				zap.String("key", key),
				zap.Error(deleteErr))
		}
	}
}

func (store *Store) read(suffix string) string {
	value, getErr := store.storage.Get(store.prefix + suffix)
	if getErr != nil {
		store.logger.Debug("session storage read failed",
			zap.String("code", "session.store.read_failure"),
			zap.String("key", suffix))
		return ""
	}
	return value
}

func (store *Store) write(suffix string, value string) {
	if setErr := store.storage.Set(store.prefix+suffix, value); setErr != nil {
		store.logger.Warn("session storage write failed",
			zap.String("code", "session.store.write_failure"),
			zap.String("key", suffix),
			zap.Error(setErr))
	}
}

func (store *Store) remove(suffix string) {
	if deleteErr := store.storage.Delete(store.prefix + suffix); deleteErr != nil {
		store.logger.Warn("session storage delete failed",
			zap.String("code", "session.store.delete_failure"),
			zap.String("key", suffix),
			zap.Error(deleteErr))
	}
}
