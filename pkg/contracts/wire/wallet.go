package wire

// Contrato wallet do RGS. Todo campo monetário atravessa a rede como
// inteiro em micro-unidades (1 unidade exibida = 1.000.000 micros).

type AuthenticateRequest struct {
	SessionID string `json:"sessionID"`
}

// Rodada ainda não liquidada no servidor, devolvida no authenticate.
type Round struct {
	RoundID string `json:"roundId"`
}

type AuthenticateResponse struct {
	Balance   int64   `json:"balance"`
	MinBet    int64   `json:"minBet"`
	MaxBet    int64   `json:"maxBet"`
	StepBet   int64   `json:"stepBet"`
	BetLevels []int64 `json:"betLevels"`
	Currency  string  `json:"currency,omitempty"`
	Round     *Round  `json:"round,omitempty"`
}

type PlayRequest struct {
	SessionID string `json:"sessionID"`
	Amount    string `json:"amount"`         // micros como string decimal, ex: "1000000"
	Mode      string `json:"mode,omitempty"` // base | feature-buy; ausente = base
}

type PlayResponse struct {
	Events  []Event `json:"events"`
	Balance int64   `json:"balance"`
	RoundID string  `json:"roundId"`
	Win     int64   `json:"win"`
}

type EndRoundRequest struct {
	SessionID string `json:"sessionID"`
	RoundID   string `json:"roundId"`
}

type EndRoundResponse struct {
	Balance int64  `json:"balance"`
	RoundID string `json:"roundId"`
}

// Corpo de erro devolvido em respostas não-2xx; Code carrega um dos oito
// identificadores de tipo de erro do contrato.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

const (
	ModeBase       = "base"
	ModeFeatureBuy = "feature-buy"
)
