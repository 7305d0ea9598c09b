package topics

const (
	// Rodadas
	RoundSettlements = "round_settlements"
)
