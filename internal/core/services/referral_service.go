package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finovest/invest_ledger_app/internal/core/domain"
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
	"github.com/finovest/invest_ledger_app/internal/middleware"
)

// referralService serves the referrer-side view of the commission ledger.
type referralService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewReferralService creates a new ReferralService.
func NewReferralService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ReferralSvcFacade {
	return &referralService{accountRepo: accountRepo}
}

var _ portssvc.ReferralSvcFacade = (*referralService)(nil)

// GetReferralOverview implements portssvc.ReferralSvcFacade. Snapshot entries
// are overlaid with the referred accounts' live email and capital so renames
// and later deposits show through; the commission figures stay as earned.
func (s *referralService) GetReferralOverview(ctx context.Context, accountID string) ([]domain.ReferralEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	if len(account.ReferralEntries) == 0 {
		return []domain.ReferralEntry{}, nil
	}

	ids := make([]string, 0, len(account.ReferralEntries))
	for _, e := range account.ReferralEntries {
		if e.ReferredAccountID != "" {
			ids = append(ids, e.ReferredAccountID)
		}
	}

	referred := map[string]domain.Account{}
	if len(ids) > 0 {
		referred, err = s.accountRepo.FindAccountsByIDs(ctx, ids)
		if err != nil {
			// The snapshot view still answers the question; serve it stale.
			logger.Warn("Referred account lookup failed, serving snapshots",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
			referred = map[string]domain.Account{}
		}
	}

	entries := make([]domain.ReferralEntry, len(account.ReferralEntries))
	copy(entries, account.ReferralEntries)
	for i := range entries {
		live, ok := referred[entries[i].ReferredAccountID]
		if !ok {
			continue
		}
		entries[i].Email = live.Email
		entries[i].CapitalSnapshot = live.Principal
	}
	return entries, nil
}
