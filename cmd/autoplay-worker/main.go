package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/autoplay"
	"github.com/werollspinners/spinner-core/internal/money"
	"github.com/werollspinners/spinner-core/internal/rgs"
	"github.com/werollspinners/spinner-core/internal/shared/config"
	"github.com/werollspinners/spinner-core/internal/shared/logger"
	"github.com/werollspinners/spinner-core/internal/shared/metrics"
)

var (
	// Métricas Prometheus da campanha de autoplay
	roundsPlayed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autoplay_rounds_total",
		Help: "Rodadas completadas",
	})
	winMicrosTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autoplay_win_micros_total",
		Help: "Prêmio acumulado em micros",
	})
	wincapHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autoplay_wincap_hits_total",
		Help: "Rodadas que atingiram o teto de prêmio",
	})
	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autoplay_errors_total",
		Help: "Erros por tipo do contrato",
	}, []string{"kind"})
)

func main() {
	cfg := config.Load()

	log, err := logger.New("autoplay-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "autoplay-worker"), zap.String("env", cfg.Env))

	prometheus.MustRegister(roundsPlayed, winMicrosTotal, wincapHits, errorsTotal)
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	bet, err := decimal.NewFromString(cfg.AutoplayBet)
	if err != nil {
		log.Fatal("invalid AUTOPLAY_BET", zap.String("value", cfg.AutoplayBet), zap.Error(err))
	}

	// Query de lançamento vazia ou inválida derruba a sessão pro modo
	// offline; o worker roda do mesmo jeito, sem carteira
	session := rgs.NewSessionFromQuery(cfg.RGSLaunchQuery)
	client := rgs.NewClient(session, log)
	client.HTTP.Timeout = cfg.RGSTimeout

	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		log.Warn("authenticate failed, continuing offline", zap.Error(err))
	}
	log.Info("session ready", zap.String("state", session.State().String()))

	runner := &autoplay.Runner{
		Client:   client,
		Log:      log,
		Rounds:   cfg.AutoplayRounds,
		Bet:      bet,
		Mode:     cfg.AutoplayMode,
		LogEvery: 100,

		OnRound: func(res *rgs.SpinResult) {
			roundsPlayed.Inc()
			winMicrosTotal.Add(float64(money.ToMicros(res.TotalWin)))
			if res.WincapHit {
				wincapHits.Inc()
			}
		},
		OnError: func(err *rgs.Error) {
			errorsTotal.WithLabelValues(string(err.Kind)).Inc()
		},
	}

	stats := runner.Run(ctx)
	log.Info("autoplay worker done",
		zap.Int("rounds", stats.Rounds),
		zap.Int("errors", stats.Errors),
		zap.Float64("rtp", stats.RTP()),
		zap.Float64("hit_rate", stats.HitRate()))
}
