package operation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/db"
	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	domop "github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

const keyPrefix = "cymbalsearch:operation:"

// store is the consumer interface for the ledger (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo stores import operations as JSON values with a TTL.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates an operation ledger.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl}
}

// Save creates or replaces the operation record and refreshes its TTL.
func (r *Repo) Save(ctx context.Context, op domop.Operation) (err error) {
	defer metrics.ObserveGateway(metrics.GatewayLedger, "save", time.Now(), &err)

	if op.Name == "" {
		return fmt.Errorf("%w: operation name is required", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation %s: %w", op.Name, err)
	}
	if err := r.store.SetWithTTL(ctx, opKey(op.Name), data, r.ttl); err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrLedger, op.Name, err)
	}
	return nil
}

// Get returns a stored operation. Unknown names yield domain.ErrOperationNotFound.
func (r *Repo) Get(ctx context.Context, name string) (op domop.Operation, err error) {
	defer metrics.ObserveGateway(metrics.GatewayLedger, "get", time.Now(), &err)

	raw, err := r.store.Get(ctx, opKey(name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domop.Operation{}, domain.ErrOperationNotFound
		}
		return domop.Operation{}, fmt.Errorf("%w: get %s: %w", domain.ErrLedger, name, err)
	}
	if err := json.Unmarshal(raw, &op); err != nil {
		return domop.Operation{}, fmt.Errorf("%w: decode %s: %w", domain.ErrLedger, name, err)
	}
	return op, nil
}

func opKey(name string) string {
	return keyPrefix + name
}
