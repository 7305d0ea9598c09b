package events

import "time"

// Evento emitido pelo rgs-simulator quando uma rodada é liquidada
// (crédito do prêmio aplicado ou rodada sem prêmio encerrada).
type RoundSettled struct {
	RoundID       string    `json:"round_id"`
	SessionID     string    `json:"session_id"`
	BetMicros     int64     `json:"bet_micros"`
	WinMicros     int64     `json:"win_micros"`
	BalanceMicros int64     `json:"balance_micros"` // saldo após a liquidação
	Mode          string    `json:"mode"`
	WincapHit     bool      `json:"wincap_hit"`
	SettledAt     time.Time `json:"settled_at"`
}
