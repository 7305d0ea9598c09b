package config

import (
	"os"
	"strconv"
	"time"

	ctopics "github.com/werollspinners/spinner-core/pkg/contracts/topics"
)

// Config centraliza variáveis de ambiente e parâmetros de execução dos binários
// Inclui conexões, tópicos, portas e os knobs do simulador e do worker
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // ex: "rgs-simulator", "autoplay-worker"

	PostgresDSN  string // vazio = carteiras/rodadas em memória
	RedisAddr    string // vazio = sessões em memória
	KafkaBrokers string // vazio = journal de rodadas desligado

	TopicRoundSettlements string

	// Simulador
	SimStartBalanceMicros int64 // saldo inicial das carteiras provisionadas
	SimSessionTTL         time.Duration
	SimMaintenance        bool  // força resposta de manutenção em todos os endpoints

	// Worker de autoplay
	RGSLaunchQuery string // query string de lançamento completa; vazio = offline
	RGSTimeout     time.Duration
	AutoplayRounds int
	AutoplayBet    string // unidades de exibição, ex: "1.00"
	AutoplayMode   string // base | feature-buy

	// Portas do binário atual
	HTTPPort    string // porta pública (API do simulador)
	MetricsPort string // porta exclusiva para /metrics e /healthz
}

// Load carrega variáveis de ambiente e define defaults para cada binário
// Resolve portas conforme o SERVICE_NAME
func Load() Config {
	svc := getEnv("SERVICE_NAME", "")
	env := getEnv("ENV", "local")

	cfg := Config{
		Env:         env,
		ServiceName: svc,

		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		TopicRoundSettlements: getEnv("TOPIC_ROUND_SETTLEMENTS", ctopics.RoundSettlements),

		SimStartBalanceMicros: getEnvInt64("SIM_START_BALANCE", 1000) * 1_000_000,
		SimSessionTTL:         time.Duration(getEnvInt64("SIM_SESSION_TTL_SECONDS", 1800)) * time.Second,
		SimMaintenance:        getEnvBool("SIM_MAINTENANCE", false),

		RGSLaunchQuery: getEnv("RGS_LAUNCH_QUERY", ""),
		RGSTimeout:     time.Duration(getEnvInt64("RGS_TIMEOUT_SECONDS", 10)) * time.Second,
		AutoplayRounds: int(getEnvInt64("AUTOPLAY_ROUNDS", 1000)),
		AutoplayBet:    getEnv("AUTOPLAY_BET", "1.00"),
		AutoplayMode:   getEnv("AUTOPLAY_MODE", "base"),
	}

	// Define portas padrão para cada binário
	switch svc {
	case "rgs-simulator":
		cfg.HTTPPort = getEnv("HTTP_PORT", "8090")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9090")
	case "autoplay-worker":
		cfg.HTTPPort = getEnv("HTTP_PORT", "") // worker não expõe HTTP público
		cfg.MetricsPort = getEnv("METRICS_PORT", "9091")
	default:
		cfg.HTTPPort = getEnv("HTTP_PORT", "8090")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9090")
	}

	return cfg
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// getEnvInt64 retorna o valor numérico da variável ou o default quando
// ausente ou ilegível
func getEnvInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// getEnvBool aceita "1", "t", "true" (strconv.ParseBool)
func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
