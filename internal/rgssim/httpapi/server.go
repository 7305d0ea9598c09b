package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/offline"
	"github.com/werollspinners/spinner-core/internal/rgssim/journal"
	"github.com/werollspinners/spinner-core/internal/rgssim/repo"
	"github.com/werollspinners/spinner-core/internal/rgssim/sessions"
	"github.com/werollspinners/spinner-core/internal/rgssim/ws"
	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// Store define as operações de carteira e rodada usadas pelos handlers
type Store interface {
	GetOrCreateWallet(ctx context.Context, sessionID string, startBalanceMicros int64) (int64, error)
	OpenRoundID(ctx context.Context, sessionID string) (string, bool, error)
	PlaceRound(ctx context.Context, pr repo.PlaceRound) (int64, error)
	SettleRound(ctx context.Context, sessionID, roundID string) (repo.Settlement, error)
}

// API serve o contrato wallet do RGS: authenticate, play e end-round,
// mais o feed WebSocket de rodadas liquidadas. Journal e Feed são
// opcionais; nil desliga cada um.
type API struct {
	Log      *zap.Logger
	Store    Store
	Sessions sessions.Registry
	Journal  *journal.Publisher
	Feed     *ws.Hub
	Gen      *offline.Generator
	Tables   gamemath.Tables

	StartBalanceMicros int64
	Currency           string
	Maintenance        bool

	// callbacks de métricas (opcionais)
	OnPlay   func(mode string)
	OnSettle func()
	OnError  func(code string)
}

// Router retorna o roteador HTTP com os endpoints do contrato
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/wallet/authenticate", a.authenticate)
	r.Post("/wallet/play", a.play)
	r.Post("/wallet/end-round", a.endRound)
	if a.Feed != nil {
		r.Get("/ws/rounds", a.Feed.HandleWS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError envia o corpo de erro do contrato e alimenta a métrica
func (a *API) writeError(w http.ResponseWriter, status int, code, msg string) {
	if a.OnError != nil {
		a.OnError(code)
	}
	writeJSON(w, status, wire.ErrorBody{Code: code, Message: msg})
}

// maintenanceGate corta qualquer endpoint quando o simulador está em
// janela de manutenção
func (a *API) maintenanceGate(w http.ResponseWriter) bool {
	if !a.Maintenance {
		return false
	}
	a.writeError(w, http.StatusServiceUnavailable, wire.CodeMaintenance, "simulator under maintenance")
	return true
}

// checkSession valida a sessão no registro e responde o erro adequado
func (a *API) checkSession(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	switch err := a.Sessions.Check(r.Context(), sessionID); {
	case err == nil:
		return true
	case err == sessions.ErrExpired:
		a.writeError(w, http.StatusUnauthorized, wire.CodeAuthTokenExpired, "session expired")
	case err == sessions.ErrUnknown:
		a.writeError(w, http.StatusUnauthorized, wire.CodeInvalidSession, "unknown session")
	default:
		a.Log.Error("session registry check failed", zap.Error(err))
		a.writeError(w, http.StatusServiceUnavailable, wire.CodeTransient, "session registry unavailable")
	}
	return false
}
