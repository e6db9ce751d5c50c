// Package session implements the client side of session management: the
// namespaced persistence layer, the issuer HTTP client, and the auth state
// machine driving login, logout, and startup checks.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeyValue is the durable storage area session entries persist into. It is
// shared with unrelated data, which is why the Store namespaces its keys.
type KeyValue interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// MemoryKeyValue is an in-process KeyValue for tests.
type MemoryKeyValue struct {
	mutex   sync.Mutex
	entries map[string]string
}

// NewMemoryKeyValue creates an empty in-memory storage area.
func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{entries: make(map[string]string)}
}

// Get returns the value for the key, or empty when absent.
func (storage *MemoryKeyValue) Get(key string) (string, error) {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	return storage.entries[key], nil
}

// Set stores the value under the key.
func (storage *MemoryKeyValue) Set(key string, value string) error {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	storage.entries[key] = value
	return nil
}

// Delete removes the key.
func (storage *MemoryKeyValue) Delete(key string) error {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	delete(storage.entries, key)
	return nil
}

// Keys lists every stored key.
func (storage *MemoryKeyValue) Keys() ([]string, error) {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	keys := make([]string, 0, len(storage.entries))
	for key := range storage.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// FileKeyValue persists the storage area as a single JSON document, written
// atomically via a temp file rename. Missing or corrupt files behave as an
// empty area on read.
type FileKeyValue struct {
	mutex sync.Mutex
	path  string
}

// NewFileKeyValue creates a file-backed storage area at the given path.
func NewFileKeyValue(path string) *FileKeyValue {
	return &FileKeyValue{path: path}
}

// Get returns the value for the key, or empty when absent.
func (storage *FileKeyValue) Get(key string) (string, error) {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	entries := storage.load()
	return entries[key], nil
}

// Set stores the value under the key.
func (storage *FileKeyValue) Set(key string, value string) error {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	entries := storage.load()
	entries[key] = value
	return storage.save(entries)
}

// Delete removes the key.
func (storage *FileKeyValue) Delete(key string) error {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	entries := storage.load()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return storage.save(entries)
}

// Keys lists every stored key.
func (storage *FileKeyValue) Keys() ([]string, error) {
	storage.mutex.Lock()
	defer storage.mutex.Unlock()
	entries := storage.load()
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	return keys, nil
}

func (storage *FileKeyValue) load() map[string]string {
	entries := make(map[string]string)
	data, readErr := os.ReadFile(storage.path)
	if readErr != nil {
		return entries
	}
	if unmarshalErr := json.Unmarshal(data, &entries); unmarshalErr != nil {
		return make(map[string]string)
	}
	return entries
}

func (storage *FileKeyValue) save(entries map[string]string) error {
	data, marshalErr := json.Marshal(entries)
	if marshalErr != nil {
		return fmt.Errorf("session.storage.encode: %w", marshalErr)
	}
	directory := filepath.Dir(storage.path)
	if mkdirErr := os.MkdirAll(directory, 0o700); mkdirErr != nil {
		return fmt.Errorf("session.storage.mkdir: %w", mkdirErr)
	}
	temporary, tempErr := os.CreateTemp(directory, ".session-*")
	if tempErr != nil {
		return fmt.Errorf("session.storage.temp: %w", tempErr)
	}
	temporaryPath := temporary.Name()
	if _, writeErr := temporary.Write(data); writeErr != nil {
		_ = temporary.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("session.storage.write: %w", writeErr)
	}
	if closeErr := temporary.Close(); closeErr != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("session.storage.close: %w", closeErr)
	}
	if renameErr := os.Rename(temporaryPath, storage.path); renameErr != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("session.storage.rename: %w", renameErr)
	}
	return nil
}
