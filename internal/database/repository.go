package database

import (
	"time"

	"github.com/autorandr/autorandr-launcher/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for the launch history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordLaunch inserts a completed launch
func (r *Repository) RecordLaunch(event *models.LaunchEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert launch event")
	}
	return nil
}

// RecordError inserts a non-fatal loop error
func (r *Repository) RecordError(stage string, err error) error {
	entry := &models.ErrorLog{
		Timestamp: time.Now(),
		Stage:     stage,
		ErrorMsg:  err.Error(),
	}
	result := r.db.Create(entry)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentLaunches returns up to limit launches, newest first
func (r *Repository) RecentLaunches(limit int) ([]*models.LaunchEvent, error) {
	var events []*models.LaunchEvent
	result := r.db.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query launch events")
	}
	return events, nil
}

// CountLaunches returns the total number of launches and how many of them failed
func (r *Repository) CountLaunches() (total int64, failed int64, err error) {
	if result := r.db.Model(&models.LaunchEvent{}).Count(&total); result.Error != nil {
		return 0, 0, errors.Wrap(result.Error, "failed to count launch events")
	}

	result := r.db.Model(&models.LaunchEvent{}).
		Where("exit_code <> 0 OR (error IS NOT NULL AND error <> '')").
		Count(&failed)
	if result.Error != nil {
		return 0, 0, errors.Wrap(result.Error, "failed to count failed launches")
	}
	return total, failed, nil
}

// RecentErrors returns up to limit error logs, newest first
func (r *Repository) RecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// DeleteOlderThan permanently removes launches and errors recorded before the given time
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	launches := r.db.Unscoped().Where("started_at < ?", before).Delete(&models.LaunchEvent{})
	if launches.Error != nil {
		return 0, errors.Wrap(launches.Error, "failed to delete old launch events")
	}
	logs := r.db.Unscoped().Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if logs.Error != nil {
		return 0, errors.Wrap(logs.Error, "failed to delete old error logs")
	}
	return launches.RowsAffected + logs.RowsAffected, nil
}
