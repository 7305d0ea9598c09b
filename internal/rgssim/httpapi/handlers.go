package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/money"
	"github.com/werollspinners/spinner-core/internal/rgssim/repo"
	"github.com/werollspinners/spinner-core/pkg/contracts/events"
	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// authenticate abre (ou retoma) a sessão, provisionando a carteira com o
// saldo inicial na primeira visita. Rodada aberta pendente é devolvida
// no campo round pro cliente reconciliar.
func (a *API) authenticate(w http.ResponseWriter, r *http.Request) {
	if a.maintenanceGate(w) {
		return
	}

	var req wire.AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "bad json")
		return
	}
	if req.SessionID == "" {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "sessionID required")
		return
	}

	if err := a.Sessions.Touch(r.Context(), req.SessionID); err != nil {
		a.Log.Error("session touch failed", zap.Error(err))
		a.writeError(w, http.StatusServiceUnavailable, wire.CodeTransient, "session registry unavailable")
		return
	}

	balance, err := a.Store.GetOrCreateWallet(r.Context(), req.SessionID, a.StartBalanceMicros)
	if err != nil {
		a.Log.Error("wallet provision failed", zap.Error(err))
		a.writeError(w, http.StatusServiceUnavailable, wire.CodeTransient, "wallet unavailable")
		return
	}

	resp := wire.AuthenticateResponse{
		Balance:   balance,
		MinBet:    gamemath.DefaultMinBetMicros,
		MaxBet:    gamemath.DefaultMaxBetMicros,
		StepBet:   gamemath.DefaultStepBetMicros,
		BetLevels: gamemath.DefaultBetLevels(),
		Currency:  a.Currency,
	}
	id, ok, err := a.Store.OpenRoundID(r.Context(), req.SessionID)
	if err != nil {
		// a sessão abre mesmo assim; a rodada volta na próxima autenticação
		a.Log.Error("open round lookup failed", zap.Error(err))
	} else if ok {
		resp.Round = &wire.Round{RoundID: id}
	}

	a.Log.Info("session authenticated",
		zap.String("session_id", req.SessionID),
		zap.Int64("balance_micros", balance),
		zap.Bool("resumed_round", resp.Round != nil))
	writeJSON(w, http.StatusOK, resp)
}

// play valida a aposta, debita, sorteia a grade e avalia o prêmio.
// Rodada com prêmio fica aberta até o end-round; sem prêmio nasce
// liquidada e já entra no journal e no feed.
func (a *API) play(w http.ResponseWriter, r *http.Request) {
	if a.maintenanceGate(w) {
		return
	}

	var req wire.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "bad json")
		return
	}
	if req.SessionID == "" {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "sessionID required")
		return
	}

	betMicros, err := money.ParseWireAmount(req.Amount)
	if err != nil || betMicros <= 0 {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "invalid amount")
		return
	}
	if betMicros < gamemath.DefaultMinBetMicros || betMicros > gamemath.DefaultMaxBetMicros {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "bet outside table limits")
		return
	}
	if betMicros%gamemath.DefaultStepBetMicros != 0 {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "bet not on ladder step")
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = wire.ModeBase
	}
	if mode != wire.ModeBase && mode != wire.ModeFeatureBuy {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "unknown mode "+mode)
		return
	}

	if !a.checkSession(w, r, req.SessionID) {
		return
	}

	debit := betMicros
	if mode == wire.ModeFeatureBuy {
		debit = betMicros * gamemath.FeatureBuyCostMultiple
	}

	var (
		board gamemath.Board
		ev    gamemath.Evaluation
	)
	if mode == wire.ModeFeatureBuy {
		board, ev = a.Gen.SpinScattered(betMicros, gamemath.ScatterMin)
	} else {
		board, ev = a.Gen.Spin(betMicros)
	}

	roundID := uuid.NewString()
	balance, err := a.Store.PlaceRound(r.Context(), repo.PlaceRound{
		SessionID:   req.SessionID,
		RoundID:     roundID,
		DebitMicros: debit,
		WinMicros:   ev.TotalMicros,
		Mode:        mode,
		Open:        ev.TotalMicros > 0,
	})
	switch err {
	case nil:
	case repo.ErrInsufficientFunds:
		a.writeError(w, http.StatusPaymentRequired, wire.CodeInsufficientBalance, "balance does not cover the bet")
		return
	case repo.ErrRoundStillOpen:
		a.writeError(w, http.StatusConflict, wire.CodeValidation, "previous round not settled")
		return
	default:
		a.Log.Error("place round failed", zap.Error(err))
		a.writeError(w, http.StatusServiceUnavailable, wire.CodeTransient, "wallet unavailable")
		return
	}

	evs := make([]wire.Event, 0, len(ev.Wins)+2)
	evs = append(evs, wire.NewBoardEvent(board.Symbols()))
	for _, win := range ev.Wins {
		evs = append(evs, wire.NewWinEvent(wire.WinData{
			Symbol: win.Symbol,
			Kind:   win.Kind,
			Ways:   win.Ways,
			Payout: win.PayoutMicros,
		}))
	}
	if ev.Scatter != nil {
		evs = append(evs, wire.NewScatterEvent(wire.ScatterData{
			Count:      ev.Scatter.Count,
			Multiplier: ev.Scatter.Multiplier,
			Award:      ev.Scatter.AwardMicros,
		}))
	}

	if a.OnPlay != nil {
		a.OnPlay(mode)
	}
	a.Log.Info("round played",
		zap.String("session_id", req.SessionID),
		zap.String("round_id", roundID),
		zap.String("mode", mode),
		zap.Int64("bet_micros", betMicros),
		zap.Int64("win_micros", ev.TotalMicros),
		zap.Bool("wincap_hit", ev.WincapHit))

	// sem prêmio não há o que liquidar depois
	if ev.TotalMicros == 0 {
		a.publishSettlement(r, events.RoundSettled{
			RoundID:       roundID,
			SessionID:     req.SessionID,
			BetMicros:     debit,
			WinMicros:     0,
			BalanceMicros: balance,
			Mode:          mode,
		})
	}

	writeJSON(w, http.StatusOK, wire.PlayResponse{
		Events:  evs,
		Balance: balance,
		RoundID: roundID,
		Win:     ev.TotalMicros,
	})
}

// endRound credita o prêmio e fecha a rodada; repetição devolve o mesmo
// resultado sem novo crédito
func (a *API) endRound(w http.ResponseWriter, r *http.Request) {
	if a.maintenanceGate(w) {
		return
	}

	var req wire.EndRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "bad json")
		return
	}
	if req.SessionID == "" || req.RoundID == "" {
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "sessionID and roundId required")
		return
	}

	if !a.checkSession(w, r, req.SessionID) {
		return
	}

	st, err := a.Store.SettleRound(r.Context(), req.SessionID, req.RoundID)
	switch err {
	case nil:
	case repo.ErrRoundNotFound:
		a.writeError(w, http.StatusBadRequest, wire.CodeValidation, "unknown round")
		return
	default:
		a.Log.Error("settle round failed", zap.Error(err))
		a.writeError(w, http.StatusServiceUnavailable, wire.CodeTransient, "wallet unavailable")
		return
	}

	if !st.AlreadyClosed {
		nominal := st.BetMicros
		if st.Mode == wire.ModeFeatureBuy {
			nominal /= gamemath.FeatureBuyCostMultiple
		}
		a.publishSettlement(r, events.RoundSettled{
			RoundID:       req.RoundID,
			SessionID:     req.SessionID,
			BetMicros:     st.BetMicros,
			WinMicros:     st.WinMicros,
			BalanceMicros: st.BalanceMicros,
			Mode:          st.Mode,
			WincapHit:     nominal > 0 && st.WinMicros >= a.Tables.WincapMultiple*nominal,
		})
		a.Log.Info("round settled",
			zap.String("session_id", req.SessionID),
			zap.String("round_id", req.RoundID),
			zap.Int64("win_micros", st.WinMicros))
	}

	writeJSON(w, http.StatusOK, wire.EndRoundResponse{
		Balance: st.BalanceMicros,
		RoundID: req.RoundID,
	})
}

// publishSettlement alimenta journal, feed e métrica com a liquidação
func (a *API) publishSettlement(r *http.Request, e events.RoundSettled) {
	e.SettledAt = time.Now().UTC()
	if a.Journal != nil {
		a.Journal.PublishRoundSettled(r.Context(), e)
	}
	if a.Feed != nil {
		a.Feed.Broadcast(e)
	}
	if a.OnSettle != nil {
		a.OnSettle()
	}
}
