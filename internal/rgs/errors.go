package rgs

import (
	"errors"
	"fmt"

	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// Kind identifica um dos oito tipos de falha do contrato wallet. Os
// valores são os mesmos códigos que trafegam no corpo de erro.
type Kind string

const (
	KindValidation          = Kind(wire.CodeValidation)
	KindInsufficientBalance = Kind(wire.CodeInsufficientBalance)
	KindInvalidSession      = Kind(wire.CodeInvalidSession)
	KindAuthTokenExpired    = Kind(wire.CodeAuthTokenExpired)
	KindGameLogic           = Kind(wire.CodeGameLogic)
	KindLocationRestricted  = Kind(wire.CodeLocationRestricted)
	KindTransient           = Kind(wire.CodeTransient)
	KindMaintenance         = Kind(wire.CodeMaintenance)
)

var knownKinds = map[Kind]bool{
	KindValidation:          true,
	KindInsufficientBalance: true,
	KindInvalidSession:      true,
	KindAuthTokenExpired:    true,
	KindGameLogic:           true,
	KindLocationRestricted:  true,
	KindTransient:           true,
	KindMaintenance:         true,
}

// Chave de mensagem localizável que a apresentação resolve por idioma.
func messageKey(kind Kind) string { return "errors." + string(kind) }

// Error é a falha tipada que atravessa o núcleo de liquidação. Nunca é
// persistida: propaga pro chamador e vira notificação localizada.
type Error struct {
	Kind       Kind
	Retryable  bool
	MessageKey string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("rgs: %s: %s", e.Kind, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("rgs: %s: %v", e.Kind, e.Cause)
	default:
		return "rgs: " + string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// newError deriva retryable e a chave de mensagem do tipo; só o
// transitório genérico é repetível.
func newError(kind Kind, msg string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Retryable:  kind == KindTransient,
		MessageKey: messageKey(kind),
		Message:    msg,
		Cause:      cause,
	}
}

// ErrMissingLaunchParameter sinaliza a queda pro modo offline quando um
// parâmetro obrigatório de lançamento falta. Não é erro de usuário.
var ErrMissingLaunchParameter = errors.New("missing launch parameter")
