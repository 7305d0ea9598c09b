package autoplay

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/money"
	"github.com/werollspinners/spinner-core/internal/rgs"
	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// Stats acumula o resultado agregado de uma campanha de autoplay
type Stats struct {
	Rounds         int
	Wins           int
	WincapHits     int
	Errors         int
	TotalBetMicros int64
	TotalWinMicros int64
}

// RTP é o retorno observado sobre o custo total apostado, em fração
func (s Stats) RTP() float64 {
	if s.TotalBetMicros == 0 {
		return 0
	}
	return float64(s.TotalWinMicros) / float64(s.TotalBetMicros)
}

// HitRate é a fração de rodadas com prêmio
func (s Stats) HitRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Runner dirige o client por N rodadas com aposta e modo fixos,
// acumulando estatísticas de RTP. Os callbacks OnRound e OnError ligam
// o loop às métricas do binário.
type Runner struct {
	Client *rgs.Client
	Log    *zap.Logger

	Rounds   int
	Bet      decimal.Decimal
	Mode     string
	Pause    time.Duration // espera entre rodadas
	LogEvery int           // progresso a cada N rodadas; 0 desliga

	OnRound func(res *rgs.SpinResult)
	OnError func(err *rgs.Error)
}

// Run joga até completar as rodadas pedidas, o contexto cancelar ou o
// saldo acabar. Erros transitórios já chegam aqui esgotados pelo retry
// do client; o runner só contabiliza e segue.
func (r *Runner) Run(ctx context.Context) Stats {
	costMicros := money.ToMicros(r.Bet)
	if r.Mode == wire.ModeFeatureBuy {
		costMicros *= gamemath.FeatureBuyCostMultiple
	}

	var stats Stats
	for i := 0; i < r.Rounds; i++ {
		select {
		case <-ctx.Done():
			r.Log.Info("autoplay cancelled", zap.Int("rounds_played", stats.Rounds))
			return stats
		default:
		}

		res, err := r.Client.Spin(ctx, rgs.SpinRequest{Bet: r.Bet, Mode: r.Mode})
		if err != nil {
			stats.Errors++
			var rerr *rgs.Error
			if !errors.As(err, &rerr) {
				rerr = rgs.Classify(err)
			}
			if r.OnError != nil {
				r.OnError(rerr)
			}
			if rerr.Kind == rgs.KindInsufficientBalance {
				r.Log.Info("balance exhausted, stopping autoplay",
					zap.Int("rounds_played", stats.Rounds))
				break
			}
			r.Log.Warn("round failed", zap.String("kind", string(rerr.Kind)), zap.Error(rerr))
			continue
		}

		stats.Rounds++
		stats.TotalBetMicros += costMicros
		winMicros := money.ToMicros(res.TotalWin)
		stats.TotalWinMicros += winMicros
		if winMicros > 0 {
			stats.Wins++
		}
		if res.WincapHit {
			stats.WincapHits++
			r.Log.Info("wincap hit", zap.String("round_id", res.RoundID))
		}
		if r.OnRound != nil {
			r.OnRound(res)
		}

		if r.LogEvery > 0 && stats.Rounds%r.LogEvery == 0 {
			r.Log.Info("autoplay progress",
				zap.Int("rounds", stats.Rounds),
				zap.Float64("rtp", stats.RTP()),
				zap.Float64("hit_rate", stats.HitRate()))
		}

		if r.Pause > 0 {
			select {
			case <-ctx.Done():
				return stats
			case <-time.After(r.Pause):
			}
		}
	}

	r.Log.Info("autoplay finished",
		zap.Int("rounds", stats.Rounds),
		zap.Int("wins", stats.Wins),
		zap.Int("wincap_hits", stats.WincapHits),
		zap.Int("errors", stats.Errors),
		zap.Int64("total_bet_micros", stats.TotalBetMicros),
		zap.Int64("total_win_micros", stats.TotalWinMicros),
		zap.Float64("rtp", stats.RTP()),
		zap.Float64("hit_rate", stats.HitRate()))
	return stats
}
