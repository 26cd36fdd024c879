package jobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/types"
)

// jobStatusRow is the gorm model backing the "wide-row table keyed by
// (partition=const, row=jobId)" of spec §4.2. partition is a constant
// column so the table can later be sharded/partitioned by it without
// touching the access pattern, matching the spec's own phrasing.
type jobStatusRow struct {
	Partition       string `gorm:"primaryKey;column:partition;size:32"`
	JobID           string `gorm:"primaryKey;column:job_id;size:64"`
	Status          string `gorm:"column:status;size:32"`
	StatusMessage   string `gorm:"column:status_message"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	ErrorMessage    string `gorm:"column:error_message"`
	TemplateJsonKey string `gorm:"column:template_json_key"`
	ContextJsonKey  string `gorm:"column:context_json_key"`
}

func (jobStatusRow) TableName() string { return "job_status" }

const partitionConst = "dtce"

// PostgresStore is the cloud C2 implementation.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens the connection and ensures the job_status table
// exists. Production deployments own their schema via golang-migrate
// (see internal/jobstore/migrations); AutoMigrate here only keeps local
// "Prod-mode-against-a-throwaway-db" runs self-contained.
func NewPostgresStore(opts config.PostgresOptions) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("jobstore: connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&jobStatusRow{}); err != nil {
		return nil, fmt.Errorf("jobstore: automigrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) toRecord(row *jobStatusRow) *types.JobStatusRecord {
	return &types.JobStatusRecord{
		JobId:           row.JobID,
		Status:          types.JobStatus(row.Status),
		StatusMessage:   row.StatusMessage,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		CompletedAt:     row.CompletedAt,
		ErrorMessage:    row.ErrorMessage,
		TemplateJsonKey: row.TemplateJsonKey,
		ContextJsonKey:  row.ContextJsonKey,
	}
}

// Create inserts a new Pending row, or refreshes UpdatedAt on an existing one.
func (s *PostgresStore) Create(ctx context.Context, jobID string) (*types.JobStatusRecord, error) {
	now := time.Now().UTC()
	var existing jobStatusRow
	err := s.db.WithContext(ctx).
		Where("partition = ? AND job_id = ?", partitionConst, jobID).
		First(&existing).Error
	if err == nil {
		existing.UpdatedAt = now
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("jobstore: refresh: %w", err)
		}
		return s.toRecord(&existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("jobstore: lookup: %w", err)
	}
	row := jobStatusRow{
		Partition: partitionConst,
		JobID:     jobID,
		Status:    string(types.JobStatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("jobstore: create: %w", err)
	}
	return s.toRecord(&row), nil
}

func (s *PostgresStore) mustFind(ctx context.Context, jobID string) (*jobStatusRow, error) {
	var row jobStatusRow
	err := s.db.WithContext(ctx).
		Where("partition = ? AND job_id = ?", partitionConst, jobID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("jobstore: job %q not found", jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: lookup: %w", err)
	}
	return &row, nil
}

// UpdateStatus sets Status and StatusMessage.
func (s *PostgresStore) UpdateStatus(ctx context.Context, jobID string, status types.JobStatus, message string) error {
	row, err := s.mustFind(ctx, jobID)
	if err != nil {
		return err
	}
	row.Status = string(status)
	row.StatusMessage = message
	row.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Save(row).Error
}

// UpdateCompletion marks the job Complete with both result keys.
func (s *PostgresStore) UpdateCompletion(ctx context.Context, jobID, templateKey, contextKey string) error {
	row, err := s.mustFind(ctx, jobID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row.Status = string(types.JobStatusComplete)
	row.StatusMessage = "Processing complete"
	row.TemplateJsonKey = templateKey
	row.ContextJsonKey = contextKey
	row.CompletedAt = &now
	row.UpdatedAt = now
	return s.db.WithContext(ctx).Save(row).Error
}

// UpdateError marks the job Failed (terminal).
func (s *PostgresStore) UpdateError(ctx context.Context, jobID, errorMessage string) error {
	row, err := s.mustFind(ctx, jobID)
	if err != nil {
		return err
	}
	row.Status = string(types.JobStatusFailed)
	row.ErrorMessage = errorMessage
	row.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Save(row).Error
}

// Get returns the current record, or (nil, nil) if jobID is unknown.
func (s *PostgresStore) Get(ctx context.Context, jobID string) (*types.JobStatusRecord, error) {
	var row jobStatusRow
	err := s.db.WithContext(ctx).
		Where("partition = ? AND job_id = ?", partitionConst, jobID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: lookup: %w", err)
	}
	return s.toRecord(&row), nil
}
