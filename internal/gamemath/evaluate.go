package gamemath

// WinEvent é uma combinação paga: um símbolo, o maior comprimento
// qualificado e o número de ways naquele comprimento.
type WinEvent struct {
	Symbol       string
	Kind         int // 3..5
	Ways         int64
	PayoutMicros int64
}

// ScatterEvent registra o prêmio posicional-independente; ausente com
// menos de 3 scatters na grade.
type ScatterEvent struct {
	Count       int
	Multiplier  int64
	AwardMicros int64
}

// Evaluation é o resultado puro de uma grade avaliada.
type Evaluation struct {
	Wins        []WinEvent
	Scatter     *ScatterEvent
	TotalMicros int64
	WincapHit   bool
}

// Evaluate calcula as combinações vencedoras de uma grade. Função pura:
// mesma entrada, mesma saída, nenhum estado escondido.
//
// Por símbolo pagável, varre comprimentos de 5 a 3; ways no comprimento L
// é o produto, sobre os rolos 0..L-1, da contagem de células iguais ao
// símbolo ou ao wild. Só o maior comprimento com ways > 0 é registrado.
// O prêmio de cada símbolo é limitado individualmente ao wincap, o scatter
// soma por cima e o total é cortado no wincap como teto final.
func Evaluate(b Board, t Tables, betMicros int64) Evaluation {
	capMicros := t.WincapMultiple * betMicros

	var wins []WinEvent
	var total int64

	for _, sym := range PaySymbols {
		for kind := ReelCount; kind >= MinKind; kind-- {
			ways := int64(1)
			for reel := 0; reel < kind; reel++ {
				var n int64
				for row := 0; row < RowCount; row++ {
					if c := b[reel][row]; c == sym || c == SymWild {
						n++
					}
				}
				if n == 0 {
					ways = 0
					break
				}
				ways *= n
			}
			if ways == 0 {
				continue
			}

			payout := t.Pay.Mult(kind, sym) * ways * betMicros / 100
			if payout > capMicros {
				payout = capMicros
			}
			wins = append(wins, WinEvent{Symbol: sym, Kind: kind, Ways: ways, PayoutMicros: payout})
			total += payout
			break // comprimentos menores do mesmo símbolo não acumulam
		}
	}

	var scatter *ScatterEvent
	count := 0
	for reel := 0; reel < ReelCount; reel++ {
		for row := 0; row < RowCount; row++ {
			if b[reel][row] == SymScatter {
				count++
			}
		}
	}
	if count >= ScatterMin {
		idx := count
		if idx > ReelCount {
			idx = ReelCount
		}
		if mult := t.Scatter[idx]; mult > 0 {
			scatter = &ScatterEvent{Count: count, Multiplier: mult, AwardMicros: mult * betMicros}
			total += scatter.AwardMicros
		}
	}

	// igualdade com o teto conta como wincap atingido
	hit := betMicros > 0 && total >= capMicros
	if total > capMicros {
		total = capMicros
	}

	return Evaluation{Wins: wins, Scatter: scatter, TotalMicros: total, WincapHit: hit}
}
