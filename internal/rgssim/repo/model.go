package repo

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundStillOpen    = errors.New("previous round still open")
)

// Estados de rodada persistidos
const (
	RoundStatusOpen   = "OPEN"
	RoundStatusClosed = "CLOSED"
)

// PlaceRound descreve o débito e a rodada resultante de um play.
// DebitMicros já inclui o custo multiplicado da compra direta; a rodada
// nasce aberta quando há prêmio a liquidar e fechada caso contrário.
type PlaceRound struct {
	SessionID   string
	RoundID     string
	DebitMicros int64
	WinMicros   int64
	Mode        string
	Open        bool
}

// Settlement é o resultado da liquidação de uma rodada
type Settlement struct {
	WinMicros     int64
	BalanceMicros int64
	BetMicros     int64
	Mode          string
	AlreadyClosed bool
}
