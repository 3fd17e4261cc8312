package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Note is a stored note.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings configures the notes store.
type Settings struct {
	DBPath string
}

// DB is the process-wide database handle. The schema is migrated when it is
// initialized and the connection pool is closed when it is destroyed.
type DB struct {
	*gorm.DB
	logger *slog.Logger
}

// OpenDB opens the sqlite database at s.DBPath.
func OpenDB(s *Settings, logger *slog.Logger) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(s.DBPath), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", s.DBPath)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}
	// sqlite allows one writer; a single connection keeps request
	// transactions from failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	return &DB{DB: db, logger: logger}, nil
}

func (d *DB) OnInit(ctx context.Context) error {
	if err := d.WithContext(ctx).AutoMigrate(&Note{}); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	d.logger.DebugContext(ctx, "database ready")
	return nil
}

func (d *DB) OnDestroy(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	d.logger.DebugContext(ctx, "closing database")
	return sqlDB.Close()
}

// UnitOfWork is a request-scoped transaction. It begins when the unit is
// initialized and is committed, or rolled back after a failure, when the
// request scope ends.
type UnitOfWork struct {
	db     *DB
	tx     *gorm.DB
	failed bool
}

// NewUnitOfWork returns a unit of work on db. The transaction starts in
// OnInit.
func NewUnitOfWork(db *DB) (*UnitOfWork, error) {
	return &UnitOfWork{db: db}, nil
}

func (u *UnitOfWork) OnInit(ctx context.Context) error {
	// database/sql rolls a transaction back when its context ends, and the
	// transaction must outlive the resolution that started it.
	tx := u.db.WithContext(context.WithoutCancel(ctx)).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to begin transaction")
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWork) OnDestroy(context.Context) error {
	if u.failed {
		return u.tx.Rollback().Error
	}
	return u.tx.Commit().Error
}

// Do runs fn inside the transaction. Any error marks the unit failed, so it
// is rolled back at the end of the request.
func (u *UnitOfWork) Do(fn func(tx *gorm.DB) error) error {
	if err := fn(u.tx); err != nil {
		u.failed = true
		return err
	}
	return nil
}

// Fail marks the unit failed without running anything.
func (u *UnitOfWork) Fail() { u.failed = true }
