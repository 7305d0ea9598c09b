package offline

import (
	"math/rand"
	"sync"

	"github.com/werollspinners/spinner-core/internal/gamemath"
)

// Generator sorteia grades substitutas quando nenhuma sessão remota pôde
// ser estabelecida. Cada uma das 20 células sai de um sorteio independente
// sobre a densidade publicada das fitas; o perfil estatístico é documentado,
// o contrato é a forma do pagamento (mesmo avaliador do caminho remoto).
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	tables  gamemath.Tables
	symbols []string
	cum     []int // pesos acumulados, alinhados a symbols
	total   int
}

// New monta um gerador com tabelas e densidade injetadas. A semente fica
// exposta para os testes fixarem o sorteio.
func New(tables gamemath.Tables, weights []gamemath.SymbolWeight, seed int64) *Generator {
	g := &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		tables: tables,
	}
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		g.total += w.Weight
		g.symbols = append(g.symbols, w.Symbol)
		g.cum = append(g.cum, g.total)
	}
	if g.total == 0 {
		for _, w := range gamemath.DefaultWeights() {
			g.total += w.Weight
			g.symbols = append(g.symbols, w.Symbol)
			g.cum = append(g.cum, g.total)
		}
	}
	return g
}

// NewDefault usa a configuração publicada do jogo.
func NewDefault(seed int64) *Generator {
	return New(gamemath.DefaultTables(), gamemath.DefaultWeights(), seed)
}

func (g *Generator) Tables() gamemath.Tables { return g.tables }

func (g *Generator) drawCell() string {
	n := g.rng.Intn(g.total)
	for i, c := range g.cum {
		if n < c {
			return g.symbols[i]
		}
	}
	return g.symbols[len(g.symbols)-1]
}

// Draw sorteia uma grade completa.
func (g *Generator) Draw() gamemath.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	var b gamemath.Board
	for reel := 0; reel < gamemath.ReelCount; reel++ {
		for row := 0; row < gamemath.RowCount; row++ {
			b[reel][row] = g.drawCell()
		}
	}
	return b
}

// DrawScattered sorteia uma grade e garante pelo menos min scatters,
// completando em posições sorteadas (compra direta do gatilho). min é
// limitado ao total de células da grade.
func (g *Generator) DrawScattered(min int) gamemath.Board {
	if cells := gamemath.ReelCount * gamemath.RowCount; min > cells {
		min = cells
	}
	b := g.Draw()
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for reel := 0; reel < gamemath.ReelCount; reel++ {
		for row := 0; row < gamemath.RowCount; row++ {
			if b[reel][row] == gamemath.SymScatter {
				count++
			}
		}
	}
	for count < min {
		reel := g.rng.Intn(gamemath.ReelCount)
		row := g.rng.Intn(gamemath.RowCount)
		if b[reel][row] == gamemath.SymScatter {
			continue
		}
		b[reel][row] = gamemath.SymScatter
		count++
	}
	return b
}

// Spin sorteia e avalia com as tabelas injetadas.
func (g *Generator) Spin(betMicros int64) (gamemath.Board, gamemath.Evaluation) {
	b := g.Draw()
	return b, gamemath.Evaluate(b, g.tables, betMicros)
}

// SpinScattered é o caminho da compra direta: grade com gatilho garantido.
func (g *Generator) SpinScattered(betMicros int64, min int) (gamemath.Board, gamemath.Evaluation) {
	b := g.DrawScattered(min)
	return b, gamemath.Evaluate(b, g.tables, betMicros)
}
