package gamemath

import "fmt"

// Identificadores de símbolo do Future Spinner. O wild substitui qualquer
// símbolo pagável, nunca o scatter, e não tem linha de prêmio própria.
const (
	SymH1 = "H1"
	SymH2 = "H2"
	SymM1 = "M1"
	SymM2 = "M2"
	SymM3 = "M3"
	SymL1 = "L1"
	SymL2 = "L2"
	SymL3 = "L3"

	SymWild    = "W"
	SymScatter = "S"
)

// PaySymbols na ordem de avaliação (maior prêmio primeiro).
var PaySymbols = []string{SymH1, SymH2, SymM1, SymM2, SymM3, SymL1, SymL2, SymL3}

const (
	ReelCount = 5
	RowCount  = 4

	// comprimento mínimo de combinação que paga
	MinKind = 3

	ScatterMin = 3
)

// Board é a grade revelada, indexada por [rolo][linha].
type Board [ReelCount][RowCount]string

// Symbols devolve a grade no formato do evento board (rolo a rolo).
func (b Board) Symbols() [][]string {
	out := make([][]string, ReelCount)
	for reel := 0; reel < ReelCount; reel++ {
		col := make([]string, RowCount)
		copy(col, b[reel][:])
		out[reel] = col
	}
	return out
}

// BoardFromSymbols valida a forma 5x4 recebida na rede. Conteúdo de célula
// desconhecido não é erro: símbolos estranhos simplesmente não combinam.
func BoardFromSymbols(symbols [][]string) (Board, error) {
	var b Board
	if len(symbols) != ReelCount {
		return b, fmt.Errorf("board: %d reels, want %d", len(symbols), ReelCount)
	}
	for reel, col := range symbols {
		if len(col) != RowCount {
			return b, fmt.Errorf("board: reel %d has %d rows, want %d", reel, len(col), RowCount)
		}
		for row, cell := range col {
			if cell == "" {
				return b, fmt.Errorf("board: empty cell at reel %d row %d", reel, row)
			}
			b[reel][row] = cell
		}
	}
	return b, nil
}
