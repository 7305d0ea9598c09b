package journal

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	skafka "github.com/werollspinners/spinner-core/internal/shared/kafka"
	"github.com/werollspinners/spinner-core/pkg/contracts/events"
)

// Publisher grava cada rodada liquidada no tópico de settlements.
// Publicação é melhor esforço: falha vira log, nunca derruba o fluxo
// da aposta.
type Publisher struct {
	Writer *skafka.Writer
	Log    *zap.Logger
}

func NewPublisher(w *skafka.Writer, log *zap.Logger) *Publisher {
	return &Publisher{Writer: w, Log: log}
}

func (p *Publisher) PublishRoundSettled(ctx context.Context, e events.RoundSettled) {
	if e.SettledAt.IsZero() {
		e.SettledAt = time.Now().UTC()
	}
	b, _ := json.Marshal(e)
	if err := skafka.WriteJSON(ctx, p.Writer, e.RoundID, b); err != nil {
		p.Log.Warn("round journal publish failed",
			zap.String("round_id", e.RoundID), zap.Error(err))
	}
}
