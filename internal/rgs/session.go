package rgs

import "github.com/shopspring/decimal"

// State do ciclo de vida: Unparsed -> Parsed -> Authenticated, ou queda
// pra Fallback (no parse ou no handshake). Estados terminais:
// Authenticated e Fallback; nenhuma reautenticação dentro de um giro.
type State int

const (
	StateUnparsed State = iota
	StateParsed
	StateAuthenticated
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateAuthenticated:
		return "authenticated"
	case StateFallback:
		return "fallback"
	default:
		return "unparsed"
	}
}

type RoundState int

const (
	RoundOpen RoundState = iota
	RoundPendingClose
)

// ActiveRound é a rodada que o servidor considera não liquidada. No
// máximo uma por sessão.
type ActiveRound struct {
	ID    string
	State RoundState
}

// AuthState é o retrato devolvido pelo authenticate, já convertido pra
// unidades de exibição. Só uma autenticação bem-sucedida muta isso.
type AuthState struct {
	Balance   decimal.Decimal
	MinBet    decimal.Decimal
	MaxBet    decimal.Decimal
	StepBet   decimal.Decimal
	BetLevels []decimal.Decimal
	Currency  string
}

// Session é a dona única do estado de sessão e rodada. Uma instância por
// lançamento, passada pro client; os testes constroem as suas.
type Session struct {
	params Params
	state  State
	auth   AuthState
	round  *ActiveRound
}

// NewSession parte de parâmetros já parseados.
func NewSession(params Params) *Session {
	return &Session{params: params, state: StateParsed}
}

// NewSessionFromQuery parseia a query de lançamento; falha de parse cai
// direto em Fallback, sem chamada de rede.
func NewSessionFromQuery(raw string) *Session {
	p, err := ParseLaunchQuery(raw)
	if err != nil {
		return &Session{state: StateFallback}
	}
	return NewSession(p)
}

func (s *Session) State() State { return s.state }

func (s *Session) Params() Params { return s.params }

func (s *Session) Auth() AuthState { return s.auth }

// Live indica que o caminho remoto está disponível.
func (s *Session) Live() bool { return s.state == StateAuthenticated }

func (s *Session) Round() *ActiveRound { return s.round }

func (s *Session) markAuthenticated(auth AuthState, round *ActiveRound) {
	s.auth = auth
	s.round = round
	s.state = StateAuthenticated
}

func (s *Session) markFallback() {
	if s.state != StateAuthenticated {
		s.state = StateFallback
	}
}

// setBalance só é chamado com saldo vindo de resposta bem-sucedida.
func (s *Session) setBalance(balance decimal.Decimal) { s.auth.Balance = balance }

func (s *Session) setRound(r *ActiveRound) { s.round = r }

func (s *Session) clearRound() { s.round = nil }
