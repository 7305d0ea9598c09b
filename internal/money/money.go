package money

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Conversão entre micro-unidades (precisão do protocolo) e unidades de
// exibição. Nenhum valor fracionário de micro atravessa a rede.

const MicrosPerUnit = 1_000_000

var microFactor = decimal.NewFromInt(MicrosPerUnit)

// ToMicros converte um valor de exibição para micros, truncando em
// direção a zero depois da escala (nunca arredonda além do valor real).
func ToMicros(display decimal.Decimal) int64 {
	return display.Mul(microFactor).IntPart()
}

// FromMicros converte micros para unidades de exibição sem perda.
func FromMicros(micros int64) decimal.Decimal {
	return decimal.New(micros, -6)
}

// WireAmount formata micros como a string decimal do campo amount do play.
func WireAmount(micros int64) string {
	return strconv.FormatInt(micros, 10)
}

// ParseWireAmount lê a string decimal do campo amount. Aceita apenas uma
// contagem inteira e não negativa de micros.
func ParseWireAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse wire amount %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("parse wire amount %q: negative", s)
	}
	return v, nil
}
