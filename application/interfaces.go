package application

import (
	"context"

	"fortuna/domain/interfaces"
)

// UnitOfWork scopes a set of repositories to one database transaction,
// so every settlement's money movement commits or rolls back as a whole.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction. Safe to call after Commit.
	Rollback() error

	WalletRepository() interfaces.WalletRepository
	TransactionRepository() interfaces.TransactionRepository
	LotteryTypeRepository() interfaces.LotteryTypeRepository
	DrawRepository() interfaces.DrawRepository
	TicketRepository() interfaces.TicketRepository
	DrawWinnerRepository() interfaces.DrawWinnerRepository
	InstrumentRepository() interfaces.InstrumentRepository
	TradeRepository() interfaces.TradeRepository
	TradeAuditRepository() interfaces.TradeAuditRepository
	RoundRepository() interfaces.RoundRepository
	RoundClueRepository() interfaces.RoundClueRepository
	RoundParticipantRepository() interfaces.RoundParticipantRepository
}

// UnitOfWorkFactory creates unit of work instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
