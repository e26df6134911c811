package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jchacon/fraud-detection-service/internal/domain/entity"
	errs "github.com/jchacon/fraud-detection-service/internal/domain/error"
	cacheport "github.com/jchacon/fraud-detection-service/internal/domain/port/cache"
	coreport "github.com/jchacon/fraud-detection-service/internal/domain/port/core"
	"github.com/jchacon/fraud-detection-service/internal/domain/port/persistence"
)

// cacheKeyPrefix namespaces idempotency entries in the shared cache store
const cacheKeyPrefix = "idempotency:txn:"

// IdempotencyGuard provides duplicate detection for transactions: a short-TTL
// cache holding pre-serialized responses, backed by a durable lookup that
// survives cache eviction and restarts.
type IdempotencyGuard struct {
	cache           cacheport.ResponseCache
	transactionRepo persistence.TransactionRepository
	logger          coreport.Logger
	ttl             time.Duration
}

// NewIdempotencyGuard creates a new IdempotencyGuard
func NewIdempotencyGuard(
	cache cacheport.ResponseCache,
	transactionRepo persistence.TransactionRepository,
	logger coreport.Logger,
	ttl time.Duration,
) *IdempotencyGuard {
	return &IdempotencyGuard{
		cache:           cache,
		transactionRepo: transactionRepo,
		logger:          logger,
		ttl:             ttl,
	}
}

// Resolve checks whether a transaction with the given business ID was already
// decided. The cache is consulted first; on a miss the durable store is
// queried. Returns the stored response and true on a hit.
func (g *IdempotencyGuard) Resolve(ctx context.Context, transactionID string) (*entity.TransactionResponse, bool, error) {
	cached, err := g.cache.Get(ctx, cacheKeyPrefix+transactionID)
	if err == nil {
		var response entity.TransactionResponse
		if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
			g.logger.Warn("Idempotency triggered (cache): returning cached response", map[string]any{
				"transaction_id": transactionID,
			})
			return &response, true, nil
		}
		// A corrupt entry is treated as a miss; the durable store decides
		g.logger.Error("Failed to deserialize cached response, falling through to durable store", map[string]any{
			"transaction_id": transactionID,
		})
	} else if !errors.Is(err, cacheport.ErrCacheMiss) {
		// Cache trouble must never fail the request; durable storage is the source of truth
		g.logger.Warn("Idempotency cache lookup failed, falling through to durable store", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
	}

	exists, err := g.transactionRepo.TransactionExists(ctx, transactionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check if transaction exists: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	txn, err := g.transactionRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, errs.ErrTransactionNotFound) {
			// Existed when we checked but gone on retrieval; treat as non-existent
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to retrieve existing transaction: %w", err)
	}

	g.logger.Warn("Idempotency triggered (durable store): transaction found in records", map[string]any{
		"transaction_id": transactionID,
	})
	response := txn.ToResponse()
	return &response, true, nil
}

// Record caches the decided response under the transaction's business ID so
// future replays short-circuit. Failures are logged and swallowed: the
// transaction row is already durable and the cache is an optimization only.
func (g *IdempotencyGuard) Record(ctx context.Context, transactionID string, response *entity.TransactionResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		g.logger.Error("Failed to serialize response for idempotency cache", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
		return
	}

	if err := g.cache.SetWithTTL(ctx, cacheKeyPrefix+transactionID, string(payload), g.ttl); err != nil {
		g.logger.Error("Failed to write idempotency cache entry", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
		return
	}

	g.logger.Debug("Idempotency cache entry recorded", map[string]any{
		"transaction_id": transactionID,
		"ttl":            g.ttl.String(),
	})
}
