package gamemath

// Paytable mapeia comprimento da combinação -> símbolo -> prêmio por way,
// em centésimos da aposta (150 = 1.50x a aposta).
type Paytable map[int]map[string]int64

// Mult devolve o multiplicador de um par (kind, símbolo); zero quando a
// tabela não tem a entrada.
func (p Paytable) Mult(kind int, symbol string) int64 {
	if row, ok := p[kind]; ok {
		return row[symbol]
	}
	return 0
}

// ScatterTable mapeia contagem de scatters (3..5) -> múltiplo inteiro da
// aposta.
type ScatterTable map[int]int64

// Tables reúne a configuração de premiação injetada na avaliação. Duas
// tabelas de scatter foram publicadas para este jogo; nada aqui assume a
// default como autoritativa, o chamador decide o que injetar.
type Tables struct {
	Pay            Paytable
	Scatter        ScatterTable
	WincapMultiple int64
}

// DefaultTables devolve a configuração publicada do Future Spinner.
func DefaultTables() Tables {
	return Tables{
		Pay: Paytable{
			5: {SymH1: 2200, SymH2: 1000, SymM1: 500, SymM2: 400, SymM3: 200, SymL1: 150, SymL2: 80, SymL3: 65},
			4: {SymH1: 600, SymH2: 300, SymM1: 150, SymM2: 100, SymM3: 60, SymL1: 45, SymL2: 25, SymL3: 20},
			3: {SymH1: 150, SymH2: 80, SymM1: 45, SymM2: 30, SymM3: 20, SymL1: 15, SymL2: 10, SymL3: 8},
		},
		Scatter:        ScatterTable{3: 1, 4: 3, 5: 10},
		WincapMultiple: 5000,
	}
}

// Escada de apostas publicada, em micros.
func DefaultBetLevels() []int64 {
	return []int64{
		100_000,     // 0.10
		200_000,     // 0.20
		500_000,     // 0.50
		1_000_000,   // 1.00
		2_000_000,   // 2.00
		5_000_000,   // 5.00
		10_000_000,  // 10.00
		20_000_000,  // 20.00
		50_000_000,  // 50.00
		100_000_000, // 100.00
	}
}

const (
	DefaultMinBetMicros  = 100_000
	DefaultMaxBetMicros  = 100_000_000
	DefaultStepBetMicros = 100_000

	// custo da compra direta do bônus, em múltiplos da aposta
	FeatureBuyCostMultiple = 100
)

// SymbolWeight é uma entrada da tabela de densidade das fitas usada no
// sorteio independente de células.
type SymbolWeight struct {
	Symbol string
	Weight int
}

// DefaultWeights devolve a densidade publicada (soma 65).
func DefaultWeights() []SymbolWeight {
	return []SymbolWeight{
		{SymH1, 2},
		{SymH2, 3},
		{SymM1, 5},
		{SymM2, 6},
		{SymM3, 8},
		{SymL1, 10},
		{SymL2, 12},
		{SymL3, 14},
		{SymWild, 3},
		{SymScatter, 2},
	}
}
