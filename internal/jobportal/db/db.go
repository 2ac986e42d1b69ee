// Package db is the gorm-backed storage of the job portal. Postgres is used
// in production and SQLite in tests; both share the same schema, migrated
// from the models package.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/jobportal/internal/jobportal/errors"
	"github.com/gartstein/jobportal/internal/jobportal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// ConnectTimeout bounds the retries of the initial connection.
	ConnectTimeout time.Duration
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// schema lists every persisted model in migration order.
var schema = []any{
	&models.User{},
	&models.Company{},
	&models.Job{},
	&models.JobApplication{},
	&models.Skill{},
	&models.JobSeekerProfile{},
	&models.AuditEntry{},
}

// NewRepository connects to postgres, retrying with exponential backoff
// until cfg.ConnectTimeout elapses, and migrates the schema.
func NewRepository(cfg *Config, logger *zap.Logger) (*Repository, error) {
	policy := backoff.NewExponentialBackOff()
	if cfg.ConnectTimeout > 0 {
		policy.MaxElapsedTime = cfg.ConnectTimeout
	}

	var repo *Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = Open(postgres.Open(cfg.DSN()), logger)
		return err
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository opens a SQLite database. Pass a shared-cache memory
// DSN such as "file:name?mode=memory&cache=shared" for tests.
func NewSQLiteRepository(dsn string, logger *zap.Logger) (*Repository, error) {
	repo, err := Open(sqlite.Open(dsn), logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := repo.db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)
	return repo, nil
}

// Open connects through dialector and migrates the schema.
func Open(dialector gorm.Dialector, logger *zap.Logger) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(schema...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// WithTransaction runs fn against a repository bound to one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// fn must only use the repository it is given.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// create inserts value without touching its associations.
func (r *Repository) create(ctx context.Context, value any, what string) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error; err != nil {
		return translate(err, what)
	}
	return nil
}

// save overwrites every column of an existing row, zero values included,
// except created_at and the columns in omit.
func (r *Repository) save(ctx context.Context, value any, what string, omit ...string) error {
	result := r.db.WithContext(ctx).Model(value).
		Select("*").
		Omit(append([]string{"created_at", clause.Associations}, omit...)...).
		Updates(value)
	if result.Error != nil {
		return translate(result.Error, what)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", e.ErrNotFound, what)
	}
	return nil
}

// translate maps gorm errors onto the error kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", e.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", e.ErrConflict, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
