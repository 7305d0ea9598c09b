package rgs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/money"
	"github.com/werollspinners/spinner-core/internal/offline"
	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

// Client fala o contrato wallet do RGS e normaliza os dois caminhos
// (remoto e offline) num único SpinResult. Uma rodada em voo por vez; o
// saldo da sessão só muda por resposta bem-sucedida.
type Client struct {
	HTTP     *http.Client
	Notifier Notifier
	Tables   gamemath.Tables
	Offline  *offline.Generator

	RetryTries int
	RetryPause time.Duration

	log     *zap.Logger
	session *Session
	mu      sync.Mutex // uma rodada em voo
}

// NewClient monta um client com os defaults do contrato; os campos
// exportados ajustam transporte, tabelas e política de retry.
func NewClient(session *Session, log *zap.Logger) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		Notifier:   NopNotifier{},
		Tables:     gamemath.DefaultTables(),
		Offline:    offline.NewDefault(time.Now().UnixNano()),
		RetryTries: defaultRetryTries,
		RetryPause: defaultRetryPause,
		log:        log,
		session:    session,
	}
}

func (c *Client) Session() *Session { return c.session }

// Authenticate faz o handshake único de abertura. Sucesso popula o
// AuthState (micros -> exibição) e marca a sessão viva; falha classifica,
// derruba pro fallback e devolve o erro classificado. Sessão sem parse
// vai direto pro fallback sem tocar a rede.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.session.State() != StateParsed {
		c.session.markFallback()
		return nil
	}

	var resp wire.AuthenticateResponse
	req := wire.AuthenticateRequest{SessionID: c.session.Params().SessionID}
	if err := c.postJSON(ctx, "/wallet/authenticate", req, &resp); err != nil {
		rerr := Classify(err)
		c.log.Warn("authenticate failed, falling back to offline",
			zap.String("kind", string(rerr.Kind)), zap.Error(rerr))
		c.session.markFallback()
		return rerr
	}

	auth := AuthState{
		Balance:  money.FromMicros(resp.Balance),
		MinBet:   money.FromMicros(resp.MinBet),
		MaxBet:   money.FromMicros(resp.MaxBet),
		StepBet:  money.FromMicros(resp.StepBet),
		Currency: resp.Currency,
	}
	for _, lvl := range resp.BetLevels {
		auth.BetLevels = append(auth.BetLevels, money.FromMicros(lvl))
	}

	// rodada não liquidada informada pelo servidor entra pendente e é
	// reconciliada antes do próximo play
	var round *ActiveRound
	if resp.Round != nil && resp.Round.RoundID != "" {
		round = &ActiveRound{ID: resp.Round.RoundID, State: RoundPendingClose}
	}

	c.session.markAuthenticated(auth, round)
	c.log.Info("session authenticated",
		zap.String("currency", resp.Currency),
		zap.Int64("balance_micros", resp.Balance),
		zap.Bool("resumed_round", round != nil))
	return nil
}

// Spin é a entrada única da liquidação. Sessão viva: reconcilia rodada
// pendente, faz play e, com prêmio positivo, end-round; o saldo devolvido
// é o da resposta mais recente. Sessão em fallback: delega ao gerador
// offline e deixa Balance nil (o chamador administra o saldo).
func (c *Client) Spin(ctx context.Context, req SpinRequest) (*SpinResult, error) {
	if !c.mu.TryLock() {
		return nil, c.surface(newError(KindValidation, "spin already in flight", nil))
	}
	defer c.mu.Unlock()

	if req.Mode != "" && req.Mode != wire.ModeBase && req.Mode != wire.ModeFeatureBuy {
		return nil, c.surface(newError(KindValidation, "unknown spin mode "+req.Mode, nil))
	}
	betMicros := money.ToMicros(req.Bet)
	if betMicros <= 0 {
		return nil, c.surface(newError(KindValidation, "bet must be positive", nil))
	}

	if !c.session.Live() {
		return c.offlineSpin(req, betMicros), nil
	}

	if err := c.checkBounds(req.Bet); err != nil {
		return nil, c.surface(err)
	}

	// 1) reconcilia rodada pendente antes de abrir outra
	if r := c.session.Round(); r != nil && r.State == RoundPendingClose {
		endResp, err := c.closeRound(ctx, r.ID)
		if err != nil {
			return nil, c.surface(Classify(err))
		}
		c.session.clearRound()
		c.session.setBalance(money.FromMicros(endResp.Balance))
		c.log.Info("pending round settled", zap.String("round_id", r.ID))
	}

	// 2) play
	playResp, err := c.play(ctx, betMicros, req.Mode)
	if err != nil {
		return nil, c.surface(Classify(err))
	}
	c.session.setRound(&ActiveRound{ID: playResp.RoundID, State: RoundOpen})
	c.session.setBalance(money.FromMicros(playResp.Balance))

	result, rerr := c.normalize(playResp, betMicros)
	if rerr != nil {
		// resposta inutilizável nunca passa por sucesso; rodada ganha
		// fica pendente pra reconciliação, nunca fingida como fechada
		if playResp.Win > 0 {
			c.session.setRound(&ActiveRound{ID: playResp.RoundID, State: RoundPendingClose})
		} else {
			c.session.clearRound()
		}
		return nil, c.surface(rerr)
	}

	// 3) end-round, só com prêmio estritamente positivo
	balanceMicros := playResp.Balance
	if playResp.Win > 0 {
		c.session.setRound(&ActiveRound{ID: playResp.RoundID, State: RoundPendingClose})
		endResp, err := c.closeRound(ctx, playResp.RoundID)
		if err != nil {
			// rodada ganha mas não liquidada: saldo fica dessincronizado
			// até a reconciliação, nunca adivinhado
			return nil, c.surface(Classify(err))
		}
		balanceMicros = endResp.Balance
		c.session.clearRound()
	} else {
		c.session.clearRound()
	}
	c.session.setBalance(money.FromMicros(balanceMicros))

	bal := money.FromMicros(balanceMicros)
	result.Balance = &bal
	return result, nil
}

// checkBounds valida a aposta contra os limites do authenticate.
func (c *Client) checkBounds(bet decimal.Decimal) *Error {
	auth := c.session.Auth()
	if auth.MinBet.IsPositive() && bet.Cmp(auth.MinBet) < 0 {
		return newError(KindValidation, "bet below minimum", nil)
	}
	if auth.MaxBet.IsPositive() && bet.Cmp(auth.MaxBet) > 0 {
		return newError(KindValidation, "bet above maximum", nil)
	}
	return nil
}

// play envia a aposta como contagem inteira de micros em string decimal,
// embrulhado na política de retry.
func (c *Client) play(ctx context.Context, betMicros int64, mode string) (*wire.PlayResponse, error) {
	req := wire.PlayRequest{
		SessionID: c.session.Params().SessionID,
		Amount:    money.WireAmount(betMicros),
	}
	if mode == wire.ModeFeatureBuy {
		req.Mode = mode
	}

	var resp wire.PlayResponse
	err := withRetry(ctx, c.RetryTries, c.RetryPause, retryable, func(ctx context.Context) error {
		resp = wire.PlayResponse{}
		return c.postJSON(ctx, "/wallet/play", req, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// closeRound liquida a rodada e devolve o saldo pós-crédito.
func (c *Client) closeRound(ctx context.Context, roundID string) (*wire.EndRoundResponse, error) {
	req := wire.EndRoundRequest{
		SessionID: c.session.Params().SessionID,
		RoundID:   roundID,
	}

	var resp wire.EndRoundResponse
	err := withRetry(ctx, c.RetryTries, c.RetryPause, retryable, func(ctx context.Context) error {
		resp = wire.EndRoundResponse{}
		return c.postJSON(ctx, "/wallet/end-round", req, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// postJSON é a ida e volta HTTP com classificação na borda: falha de rede
// e corpo ilegível viram transitório genérico, corpo de erro estruturado
// é confiado como está.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, _ := json.Marshal(in)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.session.Params().Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return newError(KindTransient, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return newError(KindTransient, "", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return classifyBody(res.StatusCode, b)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return newError(KindTransient, "malformed response body", err)
	}
	return nil
}

// normalize transforma a resposta crua do play na forma única consumida
// pela apresentação, conferindo a grade com o avaliador local. Entrada de
// evento desconhecida é ignorada; grade ausente ou malformada invalida a
// resposta inteira.
func (c *Client) normalize(resp *wire.PlayResponse, betMicros int64) (*SpinResult, *Error) {
	var board *gamemath.Board
	var wins []Win
	var scatter *Scatter

	for _, ev := range resp.Events {
		switch ev.Type {
		case wire.EventBoard:
			var data wire.BoardData
			if err := json.Unmarshal(ev.Data, &data); err != nil {
				return nil, newError(KindTransient, "malformed board event", err)
			}
			b, err := gamemath.BoardFromSymbols(data.Symbols)
			if err != nil {
				return nil, newError(KindTransient, "malformed board event", err)
			}
			board = &b
		case wire.EventWin:
			var data wire.WinData
			if err := json.Unmarshal(ev.Data, &data); err != nil {
				return nil, newError(KindTransient, "malformed win event", err)
			}
			wins = append(wins, Win{
				Symbol: data.Symbol,
				Kind:   data.Kind,
				Ways:   data.Ways,
				Payout: money.FromMicros(data.Payout),
			})
		case wire.EventScatter:
			var data wire.ScatterData
			if err := json.Unmarshal(ev.Data, &data); err != nil {
				return nil, newError(KindTransient, "malformed scatter event", err)
			}
			scatter = &Scatter{
				Count:      data.Count,
				Multiplier: data.Multiplier,
				Award:      money.FromMicros(data.Award),
			}
		}
	}
	if board == nil {
		return nil, newError(KindTransient, "play response missing board event", nil)
	}

	c.checkConformance(*board, resp, betMicros)

	return &SpinResult{
		Board:     *board,
		Wins:      wins,
		Scatter:   scatter,
		TotalWin:  money.FromMicros(resp.Win),
		WincapHit: resp.Win >= c.Tables.WincapMultiple*betMicros,
		RoundID:   resp.RoundID,
	}, nil
}

// checkConformance reavalia a grade com as tabelas locais e registra
// divergência do total; o servidor segue autoritativo.
func (c *Client) checkConformance(b gamemath.Board, resp *wire.PlayResponse, betMicros int64) {
	ev := gamemath.Evaluate(b, c.Tables, betMicros)
	if ev.TotalMicros != resp.Win {
		c.log.Warn("server win diverges from local evaluation",
			zap.String("round_id", resp.RoundID),
			zap.Int64("server_win_micros", resp.Win),
			zap.Int64("local_win_micros", ev.TotalMicros))
	}
}

// offlineSpin produz o resultado substituto; compra direta força o
// gatilho de scatters.
func (c *Client) offlineSpin(req SpinRequest, betMicros int64) *SpinResult {
	var (
		b  gamemath.Board
		ev gamemath.Evaluation
	)
	if req.Mode == wire.ModeFeatureBuy {
		b, ev = c.Offline.SpinScattered(betMicros, gamemath.ScatterMin)
	} else {
		b, ev = c.Offline.Spin(betMicros)
	}
	return resultFromEvaluation(b, ev, uuid.NewString())
}

// surface registra e notifica todo erro exposto ao chamador.
func (c *Client) surface(err *Error) *Error {
	c.log.Warn("spin surfaced error",
		zap.String("kind", string(err.Kind)),
		zap.String("message_key", err.MessageKey),
		zap.Error(err))
	c.Notifier.NotifyError(err)
	return err
}
