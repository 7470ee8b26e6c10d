// Package registry records which robots have been seen: body and head
// identity, versions, and when and through which backend they last
// connected. Body and head are tracked together because heads get swapped
// between bodies on the field.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// ErrNotFound is returned when a body id has never been recorded.
var ErrNotFound = errors.New("registry: robot not found")

// Robot is one physical NAO body, keyed by body id.
type Robot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BodyID      string    `gorm:"uniqueIndex;size:32" json:"body_id"`
	BodyVersion string    `gorm:"size:32" json:"body_version"`
	HeadID      string    `gorm:"index;size:32" json:"head_id"`
	HeadVersion string    `gorm:"size:32" json:"head_version"`
	Backend     string    `gorm:"size:16" json:"backend"`
	Connections int64     `json:"connections"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HeadSwap records a head seen on a body it was not on before.
type HeadSwap struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BodyID     string    `gorm:"index;size:32" json:"body_id"`
	PreviousID string    `gorm:"size:32" json:"previous_head_id"`
	HeadID     string    `gorm:"size:32" json:"head_id"`
	SeenAt     time.Time `json:"seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// HardwareInfo converts the record back to the identity it was made from.
func (r Robot) HardwareInfo() nao.HardwareInfo {
	return nao.HardwareInfo{
		BodyID:      r.BodyID,
		BodyVersion: r.BodyVersion,
		HeadID:      r.HeadID,
		HeadVersion: r.HeadVersion,
	}
}

// gormLogger routes GORM output through slog.
type gormLogger struct {
	slogger *slog.Logger
}

func (l *gormLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.InfoContext(ctx, msg, "gorm_data", data)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.WarnContext(ctx, msg, "gorm_data", data)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.ErrorContext(ctx, msg, "gorm_data", data)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("latency", time.Since(begin).String()),
		slog.String("sql", sql),
		slog.Int64("rows_affected", rows),
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		attrs = append(attrs, slog.Any("error", err))
		l.slogger.LogAttrs(ctx, slog.LevelError, "gorm query", attrs...)
		return
	}
	l.slogger.LogAttrs(ctx, slog.LevelDebug, "gorm query", attrs...)
}

// Registry stores Robot records.
type Registry struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to postgres at dsn and migrates the schema.
func Open(dsn string) (*Registry, error) {
	dbLogger := log.With("component", "registry")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: (&gormLogger{slogger: dbLogger}).LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("registry: connect to database: %w", err)
	}
	dbLogger.Info("database connected")

	return New(db)
}

// New wraps an open database and migrates the schema.
func New(db *gorm.DB) (*Registry, error) {
	if err := db.AutoMigrate(&Robot{}, &HeadSwap{}); err != nil {
		return nil, fmt.Errorf("registry: migrate: %w", err)
	}
	return &Registry{db: db, now: time.Now}, nil
}

// Record upserts the robot identified by hw, counting one more connection
// through backend. A head id that differs from the stored one is logged as
// a HeadSwap.
func (r *Registry) Record(ctx context.Context, hw nao.HardwareInfo, backend string) (Robot, error) {
	if hw.BodyID == "" {
		return Robot{}, errors.New("registry: empty body id")
	}
	now := r.now().UTC()

	var robot Robot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev Robot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("body_id = ?", hw.BodyID).
			First(&prev).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			robot = Robot{FirstSeen: now}
		case err != nil:
			return err
		default:
			robot = prev
			if prev.HeadID != hw.HeadID {
				swap := HeadSwap{BodyID: hw.BodyID, PreviousID: prev.HeadID, HeadID: hw.HeadID, SeenAt: now}
				if err := tx.Create(&swap).Error; err != nil {
					return err
				}
				log.Info("head swap", "body_id", hw.BodyID, "from", prev.HeadID, "to", hw.HeadID)
			}
		}

		robot.BodyID = hw.BodyID
		robot.BodyVersion = hw.BodyVersion
		robot.HeadID = hw.HeadID
		robot.HeadVersion = hw.HeadVersion
		robot.Backend = backend
		robot.Connections++
		robot.LastSeen = now
		return tx.Save(&robot).Error
	})
	if err != nil {
		return Robot{}, fmt.Errorf("registry: record %s: %w", hw.BodyID, err)
	}
	return robot, nil
}

// Get returns the record for bodyID.
func (r *Registry) Get(ctx context.Context, bodyID string) (Robot, error) {
	var robot Robot
	err := r.db.WithContext(ctx).Where("body_id = ?", bodyID).First(&robot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Robot{}, fmt.Errorf("%w: %s", ErrNotFound, bodyID)
	}
	if err != nil {
		return Robot{}, fmt.Errorf("registry: get %s: %w", bodyID, err)
	}
	return robot, nil
}

// List returns all robots, most recently seen first.
func (r *Registry) List(ctx context.Context) ([]Robot, error) {
	var robots []Robot
	if err := r.db.WithContext(ctx).Order("last_seen desc").Find(&robots).Error; err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	return robots, nil
}

// HeadSwaps returns the head history of bodyID, oldest first.
func (r *Registry) HeadSwaps(ctx context.Context, bodyID string) ([]HeadSwap, error) {
	var swaps []HeadSwap
	err := r.db.WithContext(ctx).Where("body_id = ?", bodyID).Order("seen_at asc, id asc").Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("registry: head swaps of %s: %w", bodyID, err)
	}
	return swaps, nil
}

// Close closes the underlying connection pool.
func (r *Registry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
