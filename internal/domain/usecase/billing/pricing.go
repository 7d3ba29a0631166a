package billing

import (
	"context"
	"fmt"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

// ResolvePrice maps a task type and billing unit to a unit price in minor
// units. Pure read, safe to call concurrently without locking.
func (s *Service) ResolvePrice(ctx context.Context, taskType string, unit entity.PriceUnit) (int64, error) {
	if unit != entity.PriceUnitPerImage {
		return 0, fmt.Errorf("%w: %s", errs.ErrUnsupportedPricingModel, unit)
	}

	price, err := s.uow.Repositories().Prices.Get(ctx, taskType, unit)
	if err != nil {
		return 0, err
	}
	return price.Amount, nil
}
