package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements the transaction persistence port using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            transaction.ID,
		TransactionID: transaction.TransactionID,
		CorrelationID: transaction.CorrelationID,
		AccountID:     transaction.AccountID,
		CustomerID:    transaction.CustomerID,
		Amount:        transaction.Amount,
		AmountInCents: transaction.AmountInCents,
		Currency:      string(transaction.Currency),
		OperationType: string(transaction.OperationType),
		MerchantID:    transaction.MerchantID,
		MerchantName:  transaction.MerchantName,
		MCC:           transaction.MCC,
		TerminalID:    transaction.TerminalID,
		IPAddress:     transaction.IPAddress,
		Channel:       transaction.Channel,
		Status:        string(transaction.Status),
		ResponseCode:  transaction.ResponseCode,
		Description:   transaction.Description,
		CreatedAt:     transaction.CreatedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		CorrelationID: m.CorrelationID,
		AccountID:     m.AccountID,
		CustomerID:    m.CustomerID,
		Amount:        m.Amount,
		AmountInCents: m.AmountInCents,
		Currency:      entity.Currency(m.Currency),
		OperationType: entity.OperationType(m.OperationType),
		MerchantID:    m.MerchantID,
		MerchantName:  m.MerchantName,
		MCC:           m.MCC,
		TerminalID:    m.TerminalID,
		IPAddress:     m.IPAddress,
		Channel:       m.Channel,
		Status:        entity.TransactionStatus(m.Status),
		ResponseCode:  m.ResponseCode,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

// Create saves a new decided transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": transaction.TransactionID,
		"customer_id":    transaction.CustomerID,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"transaction_id": transaction.TransactionID,
				"customer_id":    transaction.CustomerID,
			})
			return errs.ErrDuplicateTransaction
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": transaction.TransactionID,
			"customer_id":    transaction.CustomerID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("Transaction created successfully", map[string]any{
		"transaction_id": transaction.TransactionID,
		"customer_id":    transaction.CustomerID,
		"status":         transaction.Status,
	})
	return nil
}

// GetByTransactionID retrieves a transaction by its business transaction ID
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	r.logger.Debug("Getting transaction by ID", map[string]any{
		"transaction_id": transactionID,
	})

	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&transactionModel), nil
}

// TransactionExists checks if a transaction with the given business ID already exists
func (r *TransactionRepository) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check transaction existence", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return count > 0, nil
}
