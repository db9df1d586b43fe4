package repository

import (
	"context"
	"fmt"

	"fortuna/application"
	"fortuna/database"
	"fortuna/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db  *database.DB
	tx  pgx.Tx
	ctx context.Context

	walletRepo           interfaces.WalletRepository
	transactionRepo      interfaces.TransactionRepository
	lotteryTypeRepo      interfaces.LotteryTypeRepository
	drawRepo             interfaces.DrawRepository
	ticketRepo           interfaces.TicketRepository
	drawWinnerRepo       interfaces.DrawWinnerRepository
	instrumentRepo       interfaces.InstrumentRepository
	tradeRepo            interfaces.TradeRepository
	tradeAuditRepo       interfaces.TradeAuditRepository
	roundRepo            interfaces.RoundRepository
	roundClueRepo        interfaces.RoundClueRepository
	roundParticipantRepo interfaces.RoundParticipantRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work bound to the pool
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.walletRepo = NewWalletRepository(tx)
	u.transactionRepo = NewTransactionRepository(tx)
	u.lotteryTypeRepo = NewLotteryTypeRepository(tx)
	u.drawRepo = NewDrawRepository(tx)
	u.ticketRepo = NewTicketRepository(tx)
	u.drawWinnerRepo = NewDrawWinnerRepository(tx)
	u.instrumentRepo = NewInstrumentRepository(tx)
	u.tradeRepo = NewTradeRepository(tx)
	u.tradeAuditRepo = NewTradeAuditRepository(tx)
	u.roundRepo = NewRoundRepository(tx)
	u.roundClueRepo = NewRoundClueRepository(tx)
	u.roundParticipantRepo = NewRoundParticipantRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

func (u *unitOfWork) WalletRepository() interfaces.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

func (u *unitOfWork) LotteryTypeRepository() interfaces.LotteryTypeRepository {
	if u.lotteryTypeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.lotteryTypeRepo
}

func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	if u.drawRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRepo
}

func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

func (u *unitOfWork) DrawWinnerRepository() interfaces.DrawWinnerRepository {
	if u.drawWinnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawWinnerRepo
}

func (u *unitOfWork) InstrumentRepository() interfaces.InstrumentRepository {
	if u.instrumentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.instrumentRepo
}

func (u *unitOfWork) TradeRepository() interfaces.TradeRepository {
	if u.tradeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeRepo
}

func (u *unitOfWork) TradeAuditRepository() interfaces.TradeAuditRepository {
	if u.tradeAuditRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeAuditRepo
}

func (u *unitOfWork) RoundRepository() interfaces.RoundRepository {
	if u.roundRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roundRepo
}

func (u *unitOfWork) RoundClueRepository() interfaces.RoundClueRepository {
	if u.roundClueRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roundClueRepo
}

func (u *unitOfWork) RoundParticipantRepository() interfaces.RoundParticipantRepository {
	if u.roundParticipantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roundParticipantRepo
}
