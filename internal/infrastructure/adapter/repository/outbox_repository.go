package repository

import (
	"context"
	"fmt"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// OutboxRepository implements the outbox persistence port using GORM
type OutboxRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewOutboxRepository creates a new OutboxRepository instance
func NewOutboxRepository(db *gorm.DB, logger coreport.Logger) *OutboxRepository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// entityToModel converts an outbox event entity to a database model
func (r *OutboxRepository) entityToModel(event *entity.OutboxEvent) model.OutboxEvent {
	return model.OutboxEvent{
		ID:            event.ID,
		TransactionID: event.TransactionID,
		Payload:       event.Payload,
		Status:        string(event.Status),
		ErrorMessage:  event.ErrorMessage,
		RetryCount:    event.RetryCount,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
}

// modelToEntity converts an outbox event model to an entity
func (r *OutboxRepository) modelToEntity(m *model.OutboxEvent) *entity.OutboxEvent {
	return &entity.OutboxEvent{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Payload:       m.Payload,
		Status:        entity.OutboxEventStatus(m.Status),
		ErrorMessage:  m.ErrorMessage,
		RetryCount:    m.RetryCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Save persists a new outbox row and backfills the generated ID
func (r *OutboxRepository) Save(ctx context.Context, event *entity.OutboxEvent) error {
	eventModel := r.entityToModel(event)

	result := r.db.WithContext(ctx).Create(&eventModel)
	if result.Error != nil {
		r.logger.Error("Failed to save outbox event", map[string]any{
			"transaction_id": event.TransactionID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	event.ID = eventModel.ID
	return nil
}

// Update persists status/retry changes to an existing row
func (r *OutboxRepository) Update(ctx context.Context, event *entity.OutboxEvent) error {
	result := r.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"status":        string(event.Status),
			"error_message": event.ErrorMessage,
			"retry_count":   event.RetryCount,
			"updated_at":    event.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update outbox event", map[string]any{
			"outbox_id": event.ID,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		return errs.ErrOutboxEventNotFound
	}

	return nil
}

// Delete removes a delivered row
func (r *OutboxRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&model.OutboxEvent{}, id)
	if result.Error != nil {
		r.logger.Error("Failed to delete outbox event", map[string]any{
			"outbox_id": id,
			"error":     result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}

// ListByStatus returns rows in the given status, oldest first
func (r *OutboxRepository) ListByStatus(ctx context.Context, status entity.OutboxEventStatus, limit int) ([]*entity.OutboxEvent, error) {
	var eventModels []model.OutboxEvent
	result := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Limit(limit).
		Find(&eventModels)

	if result.Error != nil {
		r.logger.Error("Failed to list outbox events", map[string]any{
			"status": status,
			"error":  result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	events := make([]*entity.OutboxEvent, 0, len(eventModels))
	for i := range eventModels {
		events = append(events, r.modelToEntity(&eventModels[i]))
	}
	return events, nil
}
