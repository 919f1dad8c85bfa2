package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// documentRow is the single table backing every collection. The body is the
// JSON encoding of the entity.
type documentRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:128"`
	Data       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// SQLClient implements Client on a relational database through GORM.
type SQLClient struct {
	db      *gorm.DB
	dialect string
}

// NewSQLClient wraps an opened database. dialect selects the JSON field
// extraction syntax used by QueryByField.
func NewSQLClient(db *gorm.DB, dialect string) *SQLClient {
	return &SQLClient{db: db, dialect: dialect}
}

// OpenSQL opens the database for driver, applies connection settings,
// installs the tracing plugin and migrates the documents table.
func OpenSQL(driver, dsn string) (*SQLClient, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = OpenSQLite(dsn)
	case DriverPostgres:
		db, err = OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return NewSQLClient(db, driver), nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	setPool(db, 10)
	return db, nil
}

// OpenPostgres connects to Postgres using a URL or keyword/value DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	setPool(db, 25)
	return db, nil
}

func setPool(db *gorm.DB, maxConns int) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// AutoMigrate creates the documents table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&documentRow{})
}

// DB exposes the underlying handle.
func (c *SQLClient) DB() *gorm.DB { return c.db }

// Get implements Client.
func (c *SQLClient) Get(ctx context.Context, collection, id string) (*Document, error) {
	var row documentRow
	err := c.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowDoc(row), nil
}

// List implements Client. Documents are ordered by creation time.
func (c *SQLClient) List(ctx context.Context, collection string) ([]*Document, error) {
	var rows []documentRow
	if err := c.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowDocs(rows), nil
}

// QueryByField implements Client.
func (c *SQLClient) QueryByField(ctx context.Context, collection, field, value string) ([]*Document, error) {
	if !validField(field) {
		return nil, ErrInvalidField
	}
	q := c.db.WithContext(ctx).Where("collection = ?", collection)
	switch c.dialect {
	case DriverPostgres:
		q = q.Where("(data::jsonb ->> ?) = ?", field, value)
	default:
		q = q.Where("json_extract(data, ?) = ?", "$."+field, value)
	}
	var rows []documentRow
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowDocs(rows), nil
}

// Set implements Client as an upsert keyed by (collection, id).
func (c *SQLClient) Set(ctx context.Context, collection, id string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := documentRow{Collection: collection, ID: id, Data: string(body), CreatedAt: now, UpdatedAt: now}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

// Create implements Client with a random UUID as document id.
func (c *SQLClient) Create(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Delete implements Client.
func (c *SQLClient) Delete(ctx context.Context, collection, id string) error {
	return c.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRow{}).Error
}

// Close implements Client.
func (c *SQLClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func rowDoc(row documentRow) *Document {
	body := []byte(row.Data)
	return NewDocument(row.ID, func(v any) error { return json.Unmarshal(body, v) })
}

func rowDocs(rows []documentRow) []*Document {
	out := make([]*Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowDoc(r))
	}
	return out
}
