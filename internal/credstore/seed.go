package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrmskit/sessiond/internal/identity"
)

// DefaultRecords are the accounts the mock issuer ships with.
func DefaultRecords() []UserRecord {
	return []UserRecord{
		{
			Email:       "admin@hrms.com",
			Password:    "admin123",
			Name:        "System Administrator",
			Role:        identity.RoleAdmin,
			Permissions: []string{"employees:read", "employees:write", "attendance:read", "attendance:write", "salary:read", "salary:write", "reports:read"},
		},
		{
			Email:       "hr@hrms.com",
			Password:    "hr123",
			Name:        "HR Specialist",
			Role:        identity.RoleHR,
			Permissions: []string{"employees:read", "employees:write", "documents:read", "documents:write"},
		},
		{
			Email:       "manager@hrms.com",
			Password:    "manager123",
			Name:        "Team Manager",
			Role:        identity.RoleManager,
			Permissions: []string{"attendance:read", "attendance:write", "timesheets:read", "timesheets:approve"},
		},
		{
			Email:       "employee@hrms.com",
			Password:    "emp123",
			Name:        "Staff Employee",
			Role:        identity.RoleEmployee,
			Permissions: []string{"profile:read", "timesheets:write", "travel:request"},
		},
	}
}

// SeedDefaults inserts the default accounts, skipping any email that already
// exists so repeated startups against a persistent store stay idempotent.
func SeedDefaults(ctx context.Context, store Store) error {
	for _, record := range DefaultRecords() {
		if _, err := store.Create(ctx, record); err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				continue
			}
			return fmt.Errorf("cred_store.seed: %w", err)
		}
	}
	return nil
}
