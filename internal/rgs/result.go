package rgs

import (
	"github.com/shopspring/decimal"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/money"
)

// SpinRequest é o valor imutável de uma intenção de giro. Mode vazio
// equivale a base; feature-buy compra o gatilho direto (custo aplicado
// pelo servidor).
type SpinRequest struct {
	Bet  decimal.Decimal
	Mode string
}

// Win é uma combinação paga, já em unidades de exibição.
type Win struct {
	Symbol string
	Kind   int
	Ways   int64
	Payout decimal.Decimal
}

// Scatter é o prêmio posicional-independente, quando presente.
type Scatter struct {
	Count      int
	Multiplier int64
	Award      decimal.Decimal
}

// SpinResult é a forma única consumida pela apresentação, idêntica nos
// caminhos remoto e offline. Balance nil sinaliza que o chamador
// administra o saldo localmente.
type SpinResult struct {
	Board     gamemath.Board
	Wins      []Win
	Scatter   *Scatter
	TotalWin  decimal.Decimal
	Balance   *decimal.Decimal
	WincapHit bool
	RoundID   string
}

// resultFromEvaluation converte uma avaliação pura pro resultado
// normalizado (caminho offline).
func resultFromEvaluation(b gamemath.Board, ev gamemath.Evaluation, roundID string) *SpinResult {
	out := &SpinResult{
		Board:     b,
		TotalWin:  money.FromMicros(ev.TotalMicros),
		WincapHit: ev.WincapHit,
		RoundID:   roundID,
	}
	for _, w := range ev.Wins {
		out.Wins = append(out.Wins, Win{
			Symbol: w.Symbol,
			Kind:   w.Kind,
			Ways:   w.Ways,
			Payout: money.FromMicros(w.PayoutMicros),
		})
	}
	if ev.Scatter != nil {
		out.Scatter = &Scatter{
			Count:      ev.Scatter.Count,
			Multiplier: ev.Scatter.Multiplier,
			Award:      money.FromMicros(ev.Scatter.AwardMicros),
		}
	}
	return out
}
