package rgs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// Classify garante que toda falha vire exatamente um *Error. Precedência:
// erro já tipado passa intacto; o resto (falha de rede, corpo ilegível,
// causa desconhecida) cai em transitório genérico, pra que a política de
// retry sempre tenha uma decisão a tomar.
func Classify(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return newError(KindTransient, "", err)
}

// classifyBody interpreta o corpo estruturado de uma resposta não-2xx.
// Código conhecido é confiado como está; corpo ilegível ou código estranho
// viram transitório genérico.
func classifyBody(status int, body []byte) *Error {
	var eb wire.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && knownKinds[Kind(eb.Code)] {
		return newError(Kind(eb.Code), eb.Message, nil)
	}
	return newError(KindTransient, fmt.Sprintf("http %d", status), nil)
}

// retryable é o predicado da política de retry.
func retryable(err error) bool { return Classify(err).Retryable }
