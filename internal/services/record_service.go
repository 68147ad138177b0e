package services

import (
	"context"
	"fmt"
	"log/slog"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/ledger"
)

// ChangePublisher notifies downstream consumers that records moved.
// Implementations must tolerate a lost broker; record writes never
// fail because a notification could not be sent.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error
	Close() error
}

// RecordService orchestrates record writes across the store and AMQP.
type RecordService struct {
	store     ledger.Store
	publisher ChangePublisher
}

func NewRecordService(store ledger.Store, publisher ChangePublisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
	}
}

// CreateRecord validates and saves a record, then publishes a change
// notification.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateRecord(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}

	s.publishChange(ctx, id, r.HouseholdID, amqp.ActionCreated)
	return id, nil
}

// DeleteRecord soft deletes a record and publishes a change
// notification.
func (s *RecordService) DeleteRecord(ctx context.Context, householdID string, id int64) error {
	if err := s.store.SoftDeleteRecord(ctx, householdID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.publishChange(ctx, id, householdID, amqp.ActionDeleted)
	return nil
}

// CreateIncomeSource validates and saves an income source.
func (s *RecordService) CreateIncomeSource(ctx context.Context, src core.IncomeSource) (int64, error) {
	if err := src.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateIncomeSource(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("save income source: %w", err)
	}
	return id, nil
}

// CreateTemplate validates and saves a recurring template.
func (s *RecordService) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save template: %w", err)
	}
	return id, nil
}

// publishChange is best effort; the record is already persisted.
func (s *RecordService) publishChange(ctx context.Context, id int64, householdID, action string) {
	if s.publisher == nil {
		return
	}

	msg := amqp.NewRecordChangeMessage(id, householdID, action)
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"record_id", id,
			"household_id", householdID,
			"action", action,
			"error", err)
	}
}

// Close closes the publisher. The store is owned by the backend and
// closed by its cleanup.
func (s *RecordService) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
