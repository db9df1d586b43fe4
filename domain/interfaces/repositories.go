package interfaces

import (
	"context"
	"time"

	"fortuna/domain/entities"
)

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves the wallet for a user
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate retrieves the wallet with a row lock, for use
	// inside a settlement transaction
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// UpdateBalances persists the wallet's balance and lifetime-total fields
	UpdateBalances(ctx context.Context, wallet *entities.Wallet) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, tx *entities.Transaction) error

	// GetByWallet returns recent ledger entries for a wallet
	GetByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.Transaction, error)
}

// LotteryTypeRepository provides read access to lottery reference data
type LotteryTypeRepository interface {
	// GetByID retrieves a lottery type
	GetByID(ctx context.Context, id int64) (*entities.LotteryType, error)

	// GetEnabled returns all enabled lottery types
	GetEnabled(ctx context.Context) ([]*entities.LotteryType, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create inserts a new scheduled draw
	Create(ctx context.Context, draw *entities.Draw) error

	// GetByID retrieves a draw
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw with a row lock so the status
	// precondition and the status write share one transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)

	// GetDueDraws returns scheduled draws whose draw date has passed
	GetDueDraws(ctx context.Context, now time.Time) ([]*entities.Draw, error)

	// HasUpcoming reports whether a future scheduled draw exists for a type
	HasUpcoming(ctx context.Context, lotteryTypeID int64, after time.Time) (bool, error)

	// Update persists draw status, pools and winning numbers
	Update(ctx context.Context, draw *entities.Draw) error
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// CreateBatch inserts a batch of tickets
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error

	// GetByDraw returns all tickets for a draw
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error)

	// CountByDraw returns the number of tickets sold for a draw
	CountByDraw(ctx context.Context, drawID int64) (int64, error)

	// MarkWinner writes the once-only winner fields on a ticket
	MarkWinner(ctx context.Context, ticketID int64, prizeAmount int64) error
}

// DrawWinnerRepository defines the interface for settlement-output records
type DrawWinnerRepository interface {
	// CreateBatch appends the full winner set for a draw
	CreateBatch(ctx context.Context, winners []*entities.DrawWinner) error

	// GetByDraw returns all winner records for a draw
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.DrawWinner, error)
}

// InstrumentRepository provides read access to instrument reference data
type InstrumentRepository interface {
	// GetByID retrieves an instrument
	GetByID(ctx context.Context, id int64) (*entities.Instrument, error)

	// GetBySymbol retrieves an instrument by its symbol
	GetBySymbol(ctx context.Context, symbol string) (*entities.Instrument, error)
}

// TradeRepository defines the interface for binary trade data access
type TradeRepository interface {
	// Create inserts a new active trade
	Create(ctx context.Context, trade *entities.BinaryTrade) error

	// GetByID retrieves a trade
	GetByID(ctx context.Context, id int64) (*entities.BinaryTrade, error)

	// GetByIDForUpdate retrieves a trade with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.BinaryTrade, error)

	// GetExpiredActive returns active trades past their expiry timestamp
	GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.BinaryTrade, error)

	// Update persists trade status, exit price, payout and settlement time
	Update(ctx context.Context, trade *entities.BinaryTrade) error
}

// TradeAuditRepository defines the interface for the trade audit trail
type TradeAuditRepository interface {
	// Create appends an audit entry
	Create(ctx context.Context, entry *entities.TradeAuditLog) error

	// GetByTrade returns the audit trail for a trade
	GetByTrade(ctx context.Context, tradeID int64) ([]*entities.TradeAuditLog, error)
}

// RoundRepository defines the interface for round data access
type RoundRepository interface {
	// Create inserts a new round
	Create(ctx context.Context, round *entities.Round) error

	// GetByID retrieves a round
	GetByID(ctx context.Context, id int64) (*entities.Round, error)

	// GetByIDForUpdate retrieves a round with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Round, error)

	// GetDueRounds returns active rounds past their end time
	GetDueRounds(ctx context.Context, now time.Time) ([]*entities.Round, error)

	// GetRegistrationExpired returns registration rounds whose window closed
	GetRegistrationExpired(ctx context.Context, now time.Time) ([]*entities.Round, error)

	// GetCurrentByKind returns the non-terminal round of a kind, if any
	GetCurrentByKind(ctx context.Context, kind entities.RoundKind) (*entities.Round, error)

	// Update persists round status and pool
	Update(ctx context.Context, round *entities.Round) error
}

// RoundClueRepository defines the interface for staged reveal events
type RoundClueRepository interface {
	// CreateBatch inserts the clue schedule for a round
	CreateBatch(ctx context.Context, clues []*entities.RoundClue) error

	// GetDue returns unrevealed clues whose reveal time has passed
	GetDue(ctx context.Context, now time.Time) ([]*entities.RoundClue, error)

	// Update persists the revealed timestamp
	Update(ctx context.Context, clue *entities.RoundClue) error
}

// RoundParticipantRepository defines the interface for round stakes
type RoundParticipantRepository interface {
	// Create inserts a participant with their locked stake
	Create(ctx context.Context, p *entities.RoundParticipant) error

	// GetByRound returns all participants of a round
	GetByRound(ctx context.Context, roundID int64) ([]*entities.RoundParticipant, error)

	// GetByIDForUpdate retrieves a participant with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.RoundParticipant, error)

	// Update persists winner/refund/release fields
	Update(ctx context.Context, p *entities.RoundParticipant) error
}
