package services

import (
	portsrepo "github.com/finovest/invest_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finovest/invest_ledger_app/internal/core/ports/services"
)

// NewContainer wires all application services with their dependencies.
func NewContainer(
	repos *portsrepo.RepositoryProvider,
	config portssvc.ConfigSource,
	notifier portssvc.Notifier,
	audit portssvc.AuditSink,
) *portssvc.ServiceContainer {
	balance := NewBalanceService(repos.AccountRepo, repos.TransactionRepo, audit)
	return &portssvc.ServiceContainer{
		Balance:     balance,
		Transaction: NewTransactionService(repos.AccountRepo, repos.TransactionRepo, balance, config, audit),
		Settlement:  NewSettlementService(repos.AccountRepo, repos.TransactionRepo, balance, config, notifier),
		Referral:    NewReferralService(repos.AccountRepo),
	}
}
