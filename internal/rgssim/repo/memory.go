package repo

import (
	"context"
	"sync"
	"time"
)

type memWallet struct {
	balanceMicros int64
}

type memRound struct {
	sessionID string
	betMicros int64
	winMicros int64
	mode      string
	status    string
	createdAt time.Time
	settledAt time.Time
}

// Memory guarda carteiras e rodadas em mapas protegidos por mutex.
// É o store default do simulador quando não há Postgres configurado.
type Memory struct {
	mu      sync.Mutex
	wallets map[string]*memWallet
	rounds  map[string]*memRound
}

func NewMemory() *Memory {
	return &Memory{
		wallets: make(map[string]*memWallet),
		rounds:  make(map[string]*memRound),
	}
}

// GetOrCreateWallet devolve o saldo da carteira da sessão, provisionando
// com o saldo inicial quando é a primeira visita
func (m *Memory) GetOrCreateWallet(ctx context.Context, sessionID string, startBalanceMicros int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[sessionID]
	if !ok {
		w = &memWallet{balanceMicros: startBalanceMicros}
		m.wallets[sessionID] = w
	}
	return w.balanceMicros, nil
}

// OpenRoundID informa a rodada aberta da sessão, se houver
func (m *Memory) OpenRoundID(ctx context.Context, sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.rounds {
		if r.sessionID == sessionID && r.status == RoundStatusOpen {
			return id, true, nil
		}
	}
	return "", false, nil
}

// PlaceRound debita a aposta e registra a rodada, recusando quando o
// saldo não cobre o débito ou quando ainda existe rodada aberta
func (m *Memory) PlaceRound(ctx context.Context, pr PlaceRound) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[pr.SessionID]
	if !ok {
		return 0, ErrInsufficientFunds
	}
	for _, r := range m.rounds {
		if r.sessionID == pr.SessionID && r.status == RoundStatusOpen {
			return 0, ErrRoundStillOpen
		}
	}
	if w.balanceMicros < pr.DebitMicros {
		return 0, ErrInsufficientFunds
	}

	w.balanceMicros -= pr.DebitMicros

	status := RoundStatusClosed
	if pr.Open {
		status = RoundStatusOpen
	}
	m.rounds[pr.RoundID] = &memRound{
		sessionID: pr.SessionID,
		betMicros: pr.DebitMicros,
		winMicros: pr.WinMicros,
		mode:      pr.Mode,
		status:    status,
		createdAt: time.Now(),
	}
	return w.balanceMicros, nil
}

// SettleRound credita o prêmio e fecha a rodada. Rodada já fechada é
// idempotente: devolve o saldo atual sem novo crédito.
func (m *Memory) SettleRound(ctx context.Context, sessionID, roundID string) (Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rounds[roundID]
	if !ok || r.sessionID != sessionID {
		return Settlement{}, ErrRoundNotFound
	}
	w := m.wallets[sessionID]
	if w == nil {
		return Settlement{}, ErrRoundNotFound
	}

	if r.status == RoundStatusClosed {
		return Settlement{
			WinMicros:     r.winMicros,
			BalanceMicros: w.balanceMicros,
			BetMicros:     r.betMicros,
			Mode:          r.mode,
			AlreadyClosed: true,
		}, nil
	}

	w.balanceMicros += r.winMicros
	r.status = RoundStatusClosed
	r.settledAt = time.Now()

	return Settlement{
		WinMicros:     r.winMicros,
		BalanceMicros: w.balanceMicros,
		BetMicros:     r.betMicros,
		Mode:          r.mode,
	}, nil
}
