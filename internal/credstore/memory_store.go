package credstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps credential records in process memory. Intended for tests
// and local runs of the mock issuer.
type MemoryStore struct {
	mutex     sync.Mutex
	byID      map[string]UserRecord
	idByEmail map[string]string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]UserRecord),
		idByEmail: make(map[string]string),
	}
}

// FindByID returns the record with the given identifier.
func (store *MemoryStore) FindByID(ctx context.Context, recordID string) (UserRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	record, ok := store.byID[recordID]
	if !ok {
		return UserRecord{}, fmt.Errorf("cred_store.find_by_id: %w", ErrUserNotFound)
	}
	return cloneRecord(record), nil
}

// FindByEmail returns the record holding the given email address.
func (store *MemoryStore) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	recordID, ok := store.idByEmail[email]
	if !ok {
		return UserRecord{}, fmt.Errorf("cred_store.find_by_email: %w", ErrUserNotFound)
	}
	return cloneRecord(store.byID[recordID]), nil
}

// FindByCredentials matches email and password exactly, case-sensitive.
func (store *MemoryStore) FindByCredentials(ctx context.Context, email string, password string) (UserRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	recordID, ok := store.idByEmail[email]
	if !ok {
		return UserRecord{}, fmt.Errorf("cred_store.find_by_credentials: %w", ErrUserNotFound)
	}
	record := store.byID[recordID]
	if record.Password != password {
		return UserRecord{}, fmt.Errorf("cred_store.find_by_credentials: %w", ErrUserNotFound)
	}
	return cloneRecord(record), nil
}

// Create inserts a record, minting an identifier when none is supplied.
func (store *MemoryStore) Create(ctx context.Context, record UserRecord) (UserRecord, error) {
	if record.Email == "" {
		return UserRecord{}, fmt.Errorf("cred_store.create: %w", ErrEmptyEmail)
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.idByEmail[record.Email]; exists {
		return UserRecord{}, fmt.Errorf("cred_store.create: %w", ErrDuplicateEmail)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	store.byID[record.ID] = cloneRecord(record)
	store.idByEmail[record.Email] = record.ID
	return cloneRecord(record), nil
}

// Update replaces the stored record with the same identifier.
func (store *MemoryStore) Update(ctx context.Context, record UserRecord) error {
	if record.ID == "" {
		return fmt.Errorf("cred_store.update: %w", ErrEmptyID)
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	existing, ok := store.byID[record.ID]
	if !ok {
		return fmt.Errorf("cred_store.update: %w", ErrUserNotFound)
	}
	if record.Email != existing.Email {
		if _, taken := store.idByEmail[record.Email]; taken {
			return fmt.Errorf("cred_store.update: %w", ErrDuplicateEmail)
		}
		delete(store.idByEmail, existing.Email)
		store.idByEmail[record.Email] = record.ID
	}
	store.byID[record.ID] = cloneRecord(record)
	return nil
}

// Delete removes the record with the given identifier.
func (store *MemoryStore) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return fmt.Errorf("cred_store.delete: %w", ErrEmptyID)
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	record, ok := store.byID[recordID]
	if !ok {
		return fmt.Errorf("cred_store.delete: %w", ErrUserNotFound)
	}
	delete(store.byID, recordID)
	delete(store.idByEmail, record.Email)
	return nil
}

// List returns every stored record.
func (store *MemoryStore) List(ctx context.Context) ([]UserRecord, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	records := make([]UserRecord, 0, len(store.byID))
	for _, record := range store.byID {
		records = append(records, cloneRecord(record))
	}
	return records, nil
}

func cloneRecord(record UserRecord) UserRecord {
	cloned := record
	if record.Permissions != nil {
		cloned.Permissions = make([]string, len(record.Permissions))
		copy(cloned.Permissions, record.Permissions)
	}
	return cloned
}
