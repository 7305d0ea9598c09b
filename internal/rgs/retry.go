package rgs

import (
	"context"
	"time"
)

const (
	// 1 tentativa original + 3 repetições, pausa fixa entre elas
	defaultRetryTries = 4
	defaultRetryPause = time.Second
)

// withRetry executa op até tries vezes com pausa fixa entre tentativas;
// só repete quando retryable aprova a falha. Esgotadas as tentativas,
// devolve o último erro visto.
func withRetry(ctx context.Context, tries int, pause time.Duration, retryable func(error) bool, op func(context.Context) error) error {
	var err error
	for i := 0; i < tries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
		if err = op(ctx); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}
