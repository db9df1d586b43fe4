package testhelpers

import (
	"context"
	"time"

	"fortuna/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

// MockLotteryTypeRepository is a mock implementation of LotteryTypeRepository
type MockLotteryTypeRepository struct {
	mock.Mock
}

func (m *MockLotteryTypeRepository) GetByID(ctx context.Context, id int64) (*entities.LotteryType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotteryType), args.Error(1)
}

func (m *MockLotteryTypeRepository) GetEnabled(ctx context.Context) ([]*entities.LotteryType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LotteryType), args.Error(1)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetDueDraws(ctx context.Context, now time.Time) ([]*entities.Draw, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) HasUpcoming(ctx context.Context, lotteryTypeID int64, after time.Time) (bool, error) {
	args := m.Called(ctx, lotteryTypeID, after)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByDraw(ctx context.Context, drawID int64) (int64, error) {
	args := m.Called(ctx, drawID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) MarkWinner(ctx context.Context, ticketID int64, prizeAmount int64) error {
	args := m.Called(ctx, ticketID, prizeAmount)
	return args.Error(0)
}

// MockDrawWinnerRepository is a mock implementation of DrawWinnerRepository
type MockDrawWinnerRepository struct {
	mock.Mock
}

func (m *MockDrawWinnerRepository) CreateBatch(ctx context.Context, winners []*entities.DrawWinner) error {
	args := m.Called(ctx, winners)
	return args.Error(0)
}

func (m *MockDrawWinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.DrawWinner, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DrawWinner), args.Error(1)
}

// MockInstrumentRepository is a mock implementation of InstrumentRepository
type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) GetByID(ctx context.Context, id int64) (*entities.Instrument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) GetBySymbol(ctx context.Context, symbol string) (*entities.Instrument, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Instrument), args.Error(1)
}

// MockTradeRepository is a mock implementation of TradeRepository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, trade *entities.BinaryTrade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *MockTradeRepository) GetByID(ctx context.Context, id int64) (*entities.BinaryTrade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BinaryTrade), args.Error(1)
}

func (m *MockTradeRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.BinaryTrade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BinaryTrade), args.Error(1)
}

func (m *MockTradeRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.BinaryTrade, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BinaryTrade), args.Error(1)
}

func (m *MockTradeRepository) Update(ctx context.Context, trade *entities.BinaryTrade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

// MockTradeAuditRepository is a mock implementation of TradeAuditRepository
type MockTradeAuditRepository struct {
	mock.Mock
}

func (m *MockTradeAuditRepository) Create(ctx context.Context, entry *entities.TradeAuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTradeAuditRepository) GetByTrade(ctx context.Context, tradeID int64) ([]*entities.TradeAuditLog, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TradeAuditLog), args.Error(1)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context, round *entities.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetDueRounds(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetRegistrationExpired(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetCurrentByKind(ctx context.Context, kind entities.RoundKind) (*entities.Round, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) Update(ctx context.Context, round *entities.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

// MockRoundClueRepository is a mock implementation of RoundClueRepository
type MockRoundClueRepository struct {
	mock.Mock
}

func (m *MockRoundClueRepository) CreateBatch(ctx context.Context, clues []*entities.RoundClue) error {
	args := m.Called(ctx, clues)
	return args.Error(0)
}

func (m *MockRoundClueRepository) GetDue(ctx context.Context, now time.Time) ([]*entities.RoundClue, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RoundClue), args.Error(1)
}

func (m *MockRoundClueRepository) Update(ctx context.Context, clue *entities.RoundClue) error {
	args := m.Called(ctx, clue)
	return args.Error(0)
}

// MockRoundParticipantRepository is a mock implementation of RoundParticipantRepository
type MockRoundParticipantRepository struct {
	mock.Mock
}

func (m *MockRoundParticipantRepository) Create(ctx context.Context, p *entities.RoundParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRoundParticipantRepository) GetByRound(ctx context.Context, roundID int64) ([]*entities.RoundParticipant, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RoundParticipant), args.Error(1)
}

func (m *MockRoundParticipantRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.RoundParticipant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RoundParticipant), args.Error(1)
}

func (m *MockRoundParticipantRepository) Update(ctx context.Context, p *entities.RoundParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
