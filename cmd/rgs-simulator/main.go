package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/offline"
	"github.com/werollspinners/spinner-core/internal/rgssim/httpapi"
	"github.com/werollspinners/spinner-core/internal/rgssim/journal"
	"github.com/werollspinners/spinner-core/internal/rgssim/repo"
	"github.com/werollspinners/spinner-core/internal/rgssim/sessions"
	"github.com/werollspinners/spinner-core/internal/rgssim/ws"
	"github.com/werollspinners/spinner-core/internal/shared/cache"
	"github.com/werollspinners/spinner-core/internal/shared/config"
	"github.com/werollspinners/spinner-core/internal/shared/db"
	skafka "github.com/werollspinners/spinner-core/internal/shared/kafka"
	"github.com/werollspinners/spinner-core/internal/shared/logger"
	"github.com/werollspinners/spinner-core/internal/shared/metrics"
)

var (
	// Métricas Prometheus do simulador
	playsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_plays_total",
		Help: "Rodadas jogadas por modo",
	}, []string{"mode"})
	settlementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_settlements_total",
		Help: "Rodadas liquidadas",
	})
	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_errors_total",
		Help: "Erros respondidos por código do contrato",
	}, []string{"code"})
	feedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_feed_clients",
		Help: "Clientes WebSocket conectados ao feed de rodadas",
	})
	feedMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_feed_messages_sent_total",
		Help: "Total de liquidações transmitidas pelo feed",
	})
)

func main() {
	cfg := config.Load()

	log, err := logger.New("rgs-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "rgs-simulator"), zap.String("env", cfg.Env))

	prometheus.MustRegister(playsTotal, settlementsTotal, errorsTotal, feedClients, feedMessagesSent)

	// Store de carteiras e rodadas: Postgres quando configurado, memória caso contrário
	var store httpapi.Store
	var pg *sql.DB
	if cfg.PostgresDSN != "" {
		pg, err = db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()

		pgStore := repo.NewPostgres(pg)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatal("ensure schema", zap.Error(err))
		}
		cancel()
		store = pgStore
		log.Info("postgres store ready")
	} else {
		store = repo.NewMemory()
		log.Info("in-memory store ready")
	}

	// Registro de sessões: Redis quando configurado, memória caso contrário
	var registry sessions.Registry
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		registry = sessions.NewRedis(rdb, cfg.SimSessionTTL)
		log.Info("redis session registry ready", zap.Duration("ttl", cfg.SimSessionTTL))
	} else {
		registry = sessions.NewMemory(cfg.SimSessionTTL)
		log.Info("in-memory session registry ready", zap.Duration("ttl", cfg.SimSessionTTL))
	}

	// Journal de rodadas no Kafka, opcional
	var pub *journal.Publisher
	if cfg.KafkaBrokers != "" {
		w := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettlements)
		defer w.Close()
		pub = journal.NewPublisher(w, log)
		log.Info("round journal ready", zap.String("topic", cfg.TopicRoundSettlements))
	}

	// Feed WebSocket de rodadas liquidadas
	hub := ws.NewHub(log)
	hub.OnConnect = func() { feedClients.Inc() }
	hub.OnDisconnect = func() { feedClients.Dec() }
	hub.OnSent = func() { feedMessagesSent.Inc() }

	api := &httpapi.API{
		Log:      log,
		Store:    store,
		Sessions: registry,
		Journal:  pub,
		Feed:     hub,
		Gen:      offline.NewDefault(time.Now().UnixNano()),
		Tables:   gamemath.DefaultTables(),

		StartBalanceMicros: cfg.SimStartBalanceMicros,
		Currency:           "FUN",
		Maintenance:        cfg.SimMaintenance,

		OnPlay:   func(mode string) { playsTotal.WithLabelValues(mode).Inc() },
		OnSettle: func() { settlementsTotal.Inc() },
		OnError:  func(code string) { errorsTotal.WithLabelValues(code).Inc() },
	}

	// Servidor de métricas e health em goroutine própria
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if pg != nil {
			if err := pg.PingContext(ctx); err != nil {
				return err
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return err
			}
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	// Servidor público do contrato wallet
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}
	log.Info("rgs simulator listening",
		zap.String("addr", apiSrv.Addr),
		zap.Bool("maintenance", cfg.SimMaintenance))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
