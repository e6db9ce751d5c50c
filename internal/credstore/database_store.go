package credstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	sqliteDialector "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hrmskit/sessiond/internal/identity"
)

var (
	// ErrUnsupportedDialect indicates that no GORM dialector is available for the scheme.
	ErrUnsupportedDialect = errors.New("cred_store.unsupported_dialect")

	errEmptyDatabaseURL    = errors.New("cred_store.empty_database_url")
	errSQLiteEmptyPath     = errors.New("cred_store.sqlite.empty_path")
	errSQLiteInvalidURL    = errors.New("cred_store.sqlite.invalid_url")
	errUnsupportedNoScheme = errors.New("cred_store.unsupported_no_scheme")
)

const permissionSeparator = "\n"

// DatabaseStore persists credential records using GORM, backed by SQLite or
// Postgres depending on the database URL scheme.
type DatabaseStore struct {
	db          *gorm.DB
	driverLabel string
}

// Driver exposes the selected database driver label.
func (store *DatabaseStore) Driver() string {
	return store.driverLabel
}

type userRecordRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	Email       string `gorm:"column:email;uniqueIndex;not null"`
	Password    string `gorm:"column:password;not null"`
	Name        string `gorm:"column:name;not null;default:''"`
	Role        string `gorm:"column:role;not null"`
	Permissions string `gorm:"column:permissions;not null;default:''"`
}

func (userRecordRow) TableName() string {
	return "user_records"
}

// NewDatabaseStore opens the database, runs migrations, and returns the store.
func NewDatabaseStore(ctx context.Context, databaseURL string) (*DatabaseStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("cred_store.open: %w", errEmptyDatabaseURL)
	}
	dialector, driverLabel, dialectErr := resolveDialector(databaseURL)
	if dialectErr != nil {
		return nil, dialectErr
	}
	gormDB, openErr := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if openErr != nil {
		return nil, fmt.Errorf("cred_store.open.%s: %w", driverLabel, openErr)
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&userRecordRow{}); migrateErr != nil {
		return nil, fmt.Errorf("cred_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseStore{db: gormDB, driverLabel: driverLabel}, nil
}

// FindByID returns the record with the given identifier.
func (store *DatabaseStore) FindByID(ctx context.Context, recordID string) (UserRecord, error) {
	var row userRecordRow
	err := store.db.WithContext(ctx).Where("id = ?", recordID).Take(&row).Error
	if err != nil {
		return UserRecord{}, store.wrapLookupError("find_by_id", err)
	}
	return rowToRecord(row), nil
}

// FindByEmail returns the record holding the given email address.
func (store *DatabaseStore) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	var row userRecordRow
	err := store.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if err != nil {
		return UserRecord{}, store.wrapLookupError("find_by_email", err)
	}
	return rowToRecord(row), nil
}

// FindByCredentials matches email and password exactly, case-sensitive. The
// password comparison happens in-process so collation settings cannot relax it.
func (store *DatabaseStore) FindByCredentials(ctx context.Context, email string, password string) (UserRecord, error) {
	var row userRecordRow
	err := store.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if err != nil {
		return UserRecord{}, store.wrapLookupError("find_by_credentials", err)
	}
	if row.Email != email || row.Password != password {
		return UserRecord{}, fmt.Errorf("cred_store.find_by_credentials.%s: %w", store.driverLabel, ErrUserNotFound)
	}
	return rowToRecord(row), nil
}

// Create inserts a record, minting an identifier when none is supplied.
func (store *DatabaseStore) Create(ctx context.Context, record UserRecord) (UserRecord, error) {
	if record.Email == "" {
		return UserRecord{}, fmt.Errorf("cred_store.create.%s: %w", store.driverLabel, ErrEmptyEmail)
	}
	var existing userRecordRow
	lookupErr := store.db.WithContext(ctx).Where("email = ?", record.Email).Take(&existing).Error
	if lookupErr == nil {
		return UserRecord{}, fmt.Errorf("cred_store.create.%s: %w", store.driverLabel, ErrDuplicateEmail)
	}
	if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return UserRecord{}, fmt.Errorf("cred_store.create.%s: %w", store.driverLabel, lookupErr)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	row := recordToRow(record)
	if createErr := store.db.WithContext(ctx).Create(&row).Error; createErr != nil {
		return UserRecord{}, fmt.Errorf("cred_store.create.%s: %w", store.driverLabel, createErr)
	}
	return record, nil
}

// Update replaces the stored record with the same identifier.
func (store *DatabaseStore) Update(ctx context.Context, record UserRecord) error {
	if record.ID == "" {
		return fmt.Errorf("cred_store.update.%s: %w", store.driverLabel, ErrEmptyID)
	}
	row := recordToRow(record)
	result := store.db.WithContext(ctx).Model(&userRecordRow{}).Where("id = ?", record.ID).Updates(map[string]any{
		"email":       row.Email,
		"password":    row.Password,
		"name":        row.Name,
		"role":        row.Role,
		"permissions": row.Permissions,
	})
	if result.Error != nil {
		return fmt.Errorf("cred_store.update.%s: %w", store.driverLabel, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cred_store.update.%s: %w", store.driverLabel, ErrUserNotFound)
	}
	return nil
}

// Delete removes the record with the given identifier.
func (store *DatabaseStore) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return fmt.Errorf("cred_store.delete.%s: %w", store.driverLabel, ErrEmptyID)
	}
	result := store.db.WithContext(ctx).Where("id = ?", recordID).Delete(&userRecordRow{})
	if result.Error != nil {
		return fmt.Errorf("cred_store.delete.%s: %w", store.driverLabel, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cred_store.delete.%s: %w", store.driverLabel, ErrUserNotFound)
	}
	return nil
}

// List returns every stored record.
func (store *DatabaseStore) List(ctx context.Context) ([]UserRecord, error) {
	var rows []userRecordRow
	if err := store.db.WithContext(ctx).Order("email").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cred_store.list.%s: %w", store.driverLabel, err)
	}
	records := make([]UserRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

func (store *DatabaseStore) wrapLookupError(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("cred_store.%s.%s: %w", operation, store.driverLabel, ErrUserNotFound)
	}
	return fmt.Errorf("cred_store.%s.%s: %w", operation, store.driverLabel, err)
}

func recordToRow(record UserRecord) userRecordRow {
	return userRecordRow{
		ID:          record.ID,
		Email:       record.Email,
		Password:    record.Password,
		Name:        record.Name,
		Role:        string(record.Role),
		Permissions: strings.Join(record.Permissions, permissionSeparator),
	}
}

func rowToRecord(row userRecordRow) UserRecord {
	var permissions []string
	if row.Permissions != "" {
		permissions = strings.Split(row.Permissions, permissionSeparator)
	}
	return UserRecord{
		ID:          row.ID,
		Email:       row.Email,
		Password:    row.Password,
		Name:        row.Name,
		Role:        identity.ParseRole(row.Role),
		Permissions: permissions,
	}
}

func resolveDialector(databaseURL string) (gorm.Dialector, string, error) {
	parsed, parseErr := url.Parse(databaseURL)
	if parseErr != nil {
		return nil, "", fmt.Errorf("cred_store.parse_url: %w", parseErr)
	}
	if parsed.Scheme == "" {
		return nil, "", fmt.Errorf("cred_store.dialect: %w", errUnsupportedNoScheme)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), "postgres", nil
	case "sqlite", "sqlite3":
		dsn, dsnErr := buildSQLiteDSN(parsed)
		if dsnErr != nil {
			return nil, "", fmt.Errorf("cred_store.sqlite: %w", dsnErr)
		}
		return sqliteDialector.Open(dsn), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("cred_store.dialect.%s: %w", strings.ToLower(parsed.Scheme), ErrUnsupportedDialect)
	}
}

func buildSQLiteDSN(parsed *url.URL) (string, error) {
	if parsed == nil {
		return "", errSQLiteInvalidURL
	}
	var builder strings.Builder
	switch {
	case parsed.Opaque != "":
		builder.WriteString(parsed.Opaque)
	case parsed.Host != "":
		builder.WriteString(parsed.Host)
		if parsed.Path != "" {
			if !strings.HasPrefix(parsed.Path, "/") {
				builder.WriteString("/")
			}
			builder.WriteString(parsed.Path)
		}
	default:
		builder.WriteString(parsed.Path)
	}
	if builder.Len() == 0 {
		return "", errSQLiteEmptyPath
	}
	if parsed.RawQuery != "" {
		builder.WriteString("?")
		builder.WriteString(parsed.RawQuery)
	}
	return builder.String(), nil
}
