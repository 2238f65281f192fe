package app

import (
	"context"

	"github.com/Charvyearl/cashless/internal/domain"
)

type AccountStore interface {
	FindPayerByCard(ctx context.Context, cardID string) (domain.Payer, error)
}

// IdentityService maps a scanned card to one of the two account kinds. The
// store checks the holder table first, then the secondary holder table;
// inactive accounts resolve as not found so disabled cards never surface a
// balance or accept a PIN.
type IdentityService struct {
	store AccountStore
}

func NewIdentityService(store AccountStore) *IdentityService {
	return &IdentityService{store: store}
}

func (s *IdentityService) ResolveByCard(ctx context.Context, cardID string) (domain.Payer, error) {
	if cardID == "" {
		return domain.Payer{}, domain.ErrCardIDRequired
	}
	return s.store.FindPayerByCard(ctx, cardID)
}
