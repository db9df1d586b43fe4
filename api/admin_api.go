package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fortuna/application"
	"fortuna/config"
	"fortuna/domain/entities"
	"fortuna/domain/services"
	"fortuna/events"
	"fortuna/pricefeed"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// AdminCommand represents an admin command sent via HTTP
type AdminCommand struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params"`
}

// AdminResponse represents the response from an admin command
type AdminResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AdminAPI exposes operational commands on localhost: health, forced
// settlement of a specific draw, trade or round, and clue reveals. It is not
// a user-facing surface.
type AdminAPI struct {
	uowFactory application.UnitOfWorkFactory
	feed       pricefeed.Feed
	eventBus   *events.Bus
	rng        services.Rand
}

// NewAdminAPI creates a new admin API
func NewAdminAPI(uowFactory application.UnitOfWorkFactory, feed pricefeed.Feed, eventBus *events.Bus) *AdminAPI {
	return &AdminAPI{
		uowFactory: uowFactory,
		feed:       feed,
		eventBus:   eventBus,
		rng:        services.NewCryptoRand(),
	}
}

// Start starts the internal HTTP API
func (a *AdminAPI) Start(port int) error {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Admin command endpoint
	mux.HandleFunc("/admin/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var cmd AdminCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			respondWithError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		switch cmd.Action {
		case "settle_draw":
			a.handleSettleDraw(w, r, cmd)
		case "settle_trade":
			a.handleSettleTrade(w, r, cmd)
		case "complete_round":
			a.handleCompleteRound(w, r, cmd)
		case "reveal_clues":
			a.handleRevealClues(w, r)
		case "request_unlock":
			a.handleRequestUnlock(w, r, cmd)
		case "create_round":
			a.handleCreateRound(w, r, cmd)
		case "reveal_secret":
			a.handleRevealSecret(w, r, cmd)
		default:
			respondWithError(w, fmt.Sprintf("Unknown action: %s", cmd.Action), http.StatusBadRequest)
		}
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Admin API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Admin API server error: %v", err)
		}
	}()

	return nil
}

func (a *AdminAPI) handleSettleDraw(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	drawID, err := parseIDParam(cmd, "draw_id")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	settlementService := services.NewDrawSettlementService(
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.DrawWinnerRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		uow.LotteryTypeRepository(),
		a.rng,
	)

	result, err := settlementService.Settle(r.Context(), drawID)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to settle draw: %v", err), http.StatusInternalServerError)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithData(w, "Draw settled", map[string]interface{}{
		"draw_id":         result.Draw.ID,
		"winning_numbers": result.WinningNumbers,
		"winner_count":    len(result.Winners),
		"total_paid":      result.TotalPaid,
	})
}

func (a *AdminAPI) handleSettleTrade(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	tradeID, err := parseIDParam(cmd, "trade_id")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	settlementService := services.NewTradeSettlementService(
		uow.TradeRepository(),
		uow.TradeAuditRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		uow.InstrumentRepository(),
	)

	// An explicit exit_price overrides the feed
	var exitPrice decimal.Decimal
	if raw := cmd.Params["exit_price"]; raw != "" {
		exitPrice, err = decimal.NewFromString(raw)
		if err != nil {
			respondWithError(w, fmt.Sprintf("Invalid exit_price: %v", err), http.StatusBadRequest)
			return
		}
	} else {
		trade, err := uow.TradeRepository().GetByID(r.Context(), tradeID)
		if err != nil || trade == nil {
			respondWithError(w, fmt.Sprintf("Trade %d not found", tradeID), http.StatusNotFound)
			return
		}
		price, ok := a.feed.Latest(r.Context(), trade.Symbol)
		if !ok {
			respondWithError(w, fmt.Sprintf("No price available for %s", trade.Symbol), http.StatusConflict)
			return
		}
		exitPrice = price
	}

	result, err := settlementService.Settle(r.Context(), tradeID, exitPrice)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to settle trade: %v", err), http.StatusInternalServerError)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithData(w, "Trade settled", map[string]interface{}{
		"trade_id": result.Trade.ID,
		"status":   result.Trade.Status,
		"payout":   result.Trade.Payout,
	})
}

func (a *AdminAPI) handleCompleteRound(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	roundID, err := parseIDParam(cmd, "round_id")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	roundService := services.NewRoundService(
		uow.RoundRepository(),
		uow.RoundClueRepository(),
		uow.RoundParticipantRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		a.rng,
	)

	result, err := roundService.CompleteRound(r.Context(), roundID)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to complete round: %v", err), http.StatusInternalServerError)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"round_id":       result.Round.ID,
		"prize_amount":   result.PrizeAmount,
		"refunded_count": result.RefundedCount,
		"carried_pool":   result.CarriedPool,
	}
	if result.Winner != nil {
		data["winner_user_id"] = result.Winner.UserID
	}
	respondWithData(w, "Round completed", data)
}

func (a *AdminAPI) handleRevealClues(w http.ResponseWriter, r *http.Request) {
	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	roundService := services.NewRoundService(
		uow.RoundRepository(),
		uow.RoundClueRepository(),
		uow.RoundParticipantRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		a.rng,
	)

	revealed, err := roundService.RevealDueClues(r.Context(), time.Now().UTC())
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to reveal clues: %v", err), http.StatusInternalServerError)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithData(w, "Clues revealed", map[string]interface{}{
		"revealed_count": len(revealed),
	})
}

func (a *AdminAPI) handleRequestUnlock(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	participantID, err := parseIDParam(cmd, "participant_id")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	participant, err := uow.RoundParticipantRepository().GetByIDForUpdate(r.Context(), participantID)
	if err != nil || participant == nil {
		respondWithError(w, fmt.Sprintf("Participant %d not found", participantID), http.StatusNotFound)
		return
	}

	roundService := services.NewRoundService(
		uow.RoundRepository(),
		uow.RoundClueRepository(),
		uow.RoundParticipantRepository(),
		uow.WalletRepository(),
		uow.TransactionRepository(),
		a.rng,
	)

	if err := roundService.RequestUnlock(r.Context(), participantID); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to release stake: %v", err), http.StatusConflict)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	a.eventBus.Emit(r.Context(), events.StakeUnlockedEvent{
		RoundID: participant.RoundID,
		UserID:  participant.UserID,
		Amount:  participant.Stake,
	})

	respondWithData(w, "Stake released", map[string]interface{}{
		"participant_id": participantID,
		"round_id":       participant.RoundID,
		"amount":         participant.Stake,
	})
}

func (a *AdminAPI) handleCreateRound(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	kind := entities.RoundKind(cmd.Params["kind"])
	if kind != entities.RoundKindMysterySearch && kind != entities.RoundKindLockToWin {
		respondWithError(w, fmt.Sprintf("Unknown round kind: %q", cmd.Params["kind"]), http.StatusBadRequest)
		return
	}
	stakeAmount, err := parseIDParam(cmd, "stake_amount")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}
	prizeAmount, err := parseIDParam(cmd, "prize_amount")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}
	registrationHours, err := parseIDParam(cmd, "registration_hours")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}
	activeHours, err := parseIDParam(cmd, "active_hours")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	round := &entities.Round{
		Kind:            kind,
		Status:          entities.RoundStatusRegistration,
		StakeAmount:     stakeAmount,
		PrizeAmount:     prizeAmount,
		RegistrationEnd: now.Add(time.Duration(registrationHours) * time.Hour),
		EndsAt:          now.Add(time.Duration(registrationHours+activeHours) * time.Hour),
	}

	// Mystery-search rounds carry a sealed seed phrase
	if secret := cmd.Params["secret"]; secret != "" {
		key, err := roundSecretKey()
		if err != nil {
			respondWithError(w, fmt.Sprintf("Round secret key unavailable: %v", err), http.StatusInternalServerError)
			return
		}
		sealed, err := services.SealSecret(key, secret)
		if err != nil {
			respondWithError(w, fmt.Sprintf("Failed to seal secret: %v", err), http.StatusInternalServerError)
			return
		}
		round.SecretCipher = sealed
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	if err := uow.RoundRepository().Create(r.Context(), round); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to create round: %v", err), http.StatusInternalServerError)
		return
	}
	if err := uow.Commit(); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to commit: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithData(w, "Round created", map[string]interface{}{
		"round_id":         round.ID,
		"kind":             round.Kind,
		"registration_end": round.RegistrationEnd,
		"ends_at":          round.EndsAt,
	})
}

func (a *AdminAPI) handleRevealSecret(w http.ResponseWriter, r *http.Request, cmd AdminCommand) {
	roundID, err := parseIDParam(cmd, "round_id")
	if err != nil {
		respondWithError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uow := a.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		respondWithError(w, fmt.Sprintf("Failed to begin transaction: %v", err), http.StatusInternalServerError)
		return
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByID(r.Context(), roundID)
	if err != nil || round == nil {
		respondWithError(w, fmt.Sprintf("Round %d not found", roundID), http.StatusNotFound)
		return
	}
	if len(round.SecretCipher) == 0 {
		respondWithError(w, fmt.Sprintf("Round %d has no sealed secret", roundID), http.StatusConflict)
		return
	}

	key, err := roundSecretKey()
	if err != nil {
		respondWithError(w, fmt.Sprintf("Round secret key unavailable: %v", err), http.StatusInternalServerError)
		return
	}
	secret, err := services.OpenSecret(key, round.SecretCipher)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to open secret: %v", err), http.StatusInternalServerError)
		return
	}

	respondWithData(w, "Secret revealed", map[string]interface{}{
		"round_id": round.ID,
		"secret":   secret,
	})
}

func roundSecretKey() ([]byte, error) {
	raw := config.Get().RoundSecretKey
	if raw == "" {
		return nil, fmt.Errorf("ROUND_SECRET_KEY is not set")
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUND_SECRET_KEY: %w", err)
	}
	return key, nil
}

func parseIDParam(cmd AdminCommand, key string) (int64, error) {
	raw := cmd.Params[key]
	if raw == "" {
		return 0, fmt.Errorf("Missing %s", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %v", key, err)
	}
	return id, nil
}

func respondWithData(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AdminResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondWithError(w http.ResponseWriter, error string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(AdminResponse{
		Success: false,
		Error:   error,
	})
}
