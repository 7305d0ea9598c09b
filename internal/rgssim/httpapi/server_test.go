package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/werollspinners/spinner-core/internal/gamemath"
	"github.com/werollspinners/spinner-core/internal/offline"
	"github.com/werollspinners/spinner-core/internal/rgssim/repo"
	"github.com/werollspinners/spinner-core/internal/rgssim/sessions"
	"github.com/werollspinners/spinner-core/internal/rgssim/ws"
	"github.com/werollspinners/spinner-core/pkg/contracts/events"
	"github.com/werollspinners/spinner-core/pkg/contracts/wire"
)

const startBalance = int64(1_000_000_000) // 1000.00

func newTestAPI() *API {
	return &API{
		Log:                zap.NewNop(),
		Store:              repo.NewMemory(),
		Sessions:           sessions.NewMemory(time.Minute),
		Gen:                offline.NewDefault(42),
		Tables:             gamemath.DefaultTables(),
		StartBalanceMicros: startBalance,
		Currency:           "FUN",
	}
}

func postJSON(t *testing.T, url string, body any) (int, []byte) {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, buf.Bytes()
}

func decodeInto(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
}

func wantErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (body %s)", status, wantStatus, string(body))
	}
	var eb wire.ErrorBody
	decodeInto(t, body, &eb)
	if eb.Code != wantCode {
		t.Fatalf("code = %s, want %s", eb.Code, wantCode)
	}
}

func TestAuthenticateProvisionsWallet(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	status, body := postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	if status != http.StatusOK {
		t.Fatalf("status = %d (body %s)", status, string(body))
	}
	var resp wire.AuthenticateResponse
	decodeInto(t, body, &resp)

	if resp.Balance != startBalance {
		t.Fatalf("balance = %d, want %d", resp.Balance, startBalance)
	}
	if resp.MinBet != gamemath.DefaultMinBetMicros || resp.MaxBet != gamemath.DefaultMaxBetMicros {
		t.Fatalf("limits = %d/%d", resp.MinBet, resp.MaxBet)
	}
	if len(resp.BetLevels) == 0 || resp.BetLevels[0] != gamemath.DefaultMinBetMicros {
		t.Fatalf("betLevels = %v", resp.BetLevels)
	}
	if resp.Currency != "FUN" {
		t.Fatalf("currency = %s", resp.Currency)
	}
	if resp.Round != nil {
		t.Fatalf("fresh wallet reported an open round")
	}
}

func TestAuthenticateValidation(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	status, body := postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{})
	wantErrorCode(t, status, body, http.StatusBadRequest, wire.CodeValidation)
}

type failingRoundStore struct {
	Store
}

func (failingRoundStore) OpenRoundID(ctx context.Context, sessionID string) (string, bool, error) {
	return "", false, errors.New("store down")
}

// pane no lookup da rodada pendente não derruba a autenticação
func TestAuthenticateSurvivesOpenRoundLookupFailure(t *testing.T) {
	api := newTestAPI()
	api.Store = failingRoundStore{api.Store}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	status, body := postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	if status != http.StatusOK {
		t.Fatalf("status = %d (body %s)", status, string(body))
	}
	var resp wire.AuthenticateResponse
	decodeInto(t, body, &resp)
	if resp.Balance != startBalance {
		t.Fatalf("balance = %d, want %d", resp.Balance, startBalance)
	}
	if resp.Round != nil {
		t.Fatalf("round reported on failed lookup: %+v", resp.Round)
	}
}

// joga rodadas conferindo a conservação da carteira: todo débito e
// crédito precisa bater com o saldo devolvido pelo contrato
func TestPlayAndSettleConservesWallet(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	status, body := postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	if status != http.StatusOK {
		t.Fatalf("auth status = %d", status)
	}

	const bet = int64(1_000_000)
	expected := startBalance
	sawWin, sawZero := false, false

	for i := 0; i < 200 && !(sawWin && sawZero); i++ {
		status, body = postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
			SessionID: "sess-1", Amount: "1000000",
		})
		if status != http.StatusOK {
			t.Fatalf("play %d status = %d (body %s)", i, status, string(body))
		}
		var play wire.PlayResponse
		decodeInto(t, body, &play)

		expected -= bet
		if play.Balance != expected {
			t.Fatalf("play %d balance = %d, want %d", i, play.Balance, expected)
		}
		if len(play.Events) == 0 || play.Events[0].Type != wire.EventBoard {
			t.Fatalf("play %d: first event must be the board", i)
		}
		if play.RoundID == "" {
			t.Fatalf("play %d: missing roundId", i)
		}

		if play.Win > 0 {
			sawWin = true
			status, body = postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
				SessionID: "sess-1", RoundID: play.RoundID,
			})
			if status != http.StatusOK {
				t.Fatalf("end-round status = %d (body %s)", status, string(body))
			}
			var end wire.EndRoundResponse
			decodeInto(t, body, &end)

			expected += play.Win
			if end.Balance != expected {
				t.Fatalf("end balance = %d, want %d", end.Balance, expected)
			}
			if end.RoundID != play.RoundID {
				t.Fatalf("end roundId = %s, want %s", end.RoundID, play.RoundID)
			}
		} else {
			sawZero = true
		}
	}

	if !sawWin || !sawZero {
		t.Fatalf("draws not diverse enough: win=%v zero=%v", sawWin, sawZero)
	}
}

func TestPlayFeatureBuyChargesMultipleAndForcesScatters(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "sess-1", Amount: "1000000", Mode: wire.ModeFeatureBuy,
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d (body %s)", status, string(body))
	}
	var play wire.PlayResponse
	decodeInto(t, body, &play)

	wantBalance := startBalance - 1_000_000*gamemath.FeatureBuyCostMultiple
	if play.Balance != wantBalance {
		t.Fatalf("balance = %d, want %d (100x debit)", play.Balance, wantBalance)
	}

	var scatter *wire.ScatterData
	for _, ev := range play.Events {
		if ev.Type == wire.EventScatter {
			var data wire.ScatterData
			decodeInto(t, ev.Data, &data)
			scatter = &data
		}
	}
	if scatter == nil || scatter.Count < gamemath.ScatterMin {
		t.Fatalf("scatter = %+v, want count >= %d", scatter, gamemath.ScatterMin)
	}
}

func TestPlayInsufficientBalance(t *testing.T) {
	api := newTestAPI()
	api.StartBalanceMicros = 50_000 // menos que a aposta mínima
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "sess-1", Amount: "100000",
	})
	wantErrorCode(t, status, body, http.StatusPaymentRequired, wire.CodeInsufficientBalance)
}

func TestPlayValidation(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	cases := []struct {
		name string
		req  wire.PlayRequest
	}{
		{"no session", wire.PlayRequest{Amount: "1000000"}},
		{"bad amount", wire.PlayRequest{SessionID: "sess-1", Amount: "abc"}},
		{"fractional amount", wire.PlayRequest{SessionID: "sess-1", Amount: "1.5"}},
		{"zero amount", wire.PlayRequest{SessionID: "sess-1", Amount: "0"}},
		{"negative amount", wire.PlayRequest{SessionID: "sess-1", Amount: "-1000000"}},
		{"below minimum", wire.PlayRequest{SessionID: "sess-1", Amount: "50000"}},
		{"above maximum", wire.PlayRequest{SessionID: "sess-1", Amount: "200000000"}},
		{"off ladder step", wire.PlayRequest{SessionID: "sess-1", Amount: "150000"}},
		{"unknown mode", wire.PlayRequest{SessionID: "sess-1", Amount: "1000000", Mode: "turbo"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, srv.URL+"/wallet/play", tc.req)
			wantErrorCode(t, status, body, http.StatusBadRequest, wire.CodeValidation)
		})
	}
}

func TestPlayUnknownSession(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "never-authenticated", Amount: "1000000",
	})
	wantErrorCode(t, status, body, http.StatusUnauthorized, wire.CodeInvalidSession)
}

func TestPlayExpiredSession(t *testing.T) {
	api := newTestAPI()
	api.Sessions = sessions.NewMemory(15 * time.Millisecond)
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	time.Sleep(30 * time.Millisecond)

	status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "sess-1", Amount: "1000000",
	})
	wantErrorCode(t, status, body, http.StatusUnauthorized, wire.CodeAuthTokenExpired)
}

func TestEndRoundIdempotent(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	// joga até abrir uma rodada premiada
	var winning wire.PlayResponse
	for i := 0; i < 200; i++ {
		status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
			SessionID: "sess-1", Amount: "1000000",
		})
		if status != http.StatusOK {
			t.Fatalf("play status = %d", status)
		}
		decodeInto(t, body, &winning)
		if winning.Win > 0 {
			break
		}
	}
	if winning.Win == 0 {
		t.Fatalf("no winning round in 200 plays")
	}

	status, body := postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
		SessionID: "sess-1", RoundID: winning.RoundID,
	})
	if status != http.StatusOK {
		t.Fatalf("end status = %d", status)
	}
	var first wire.EndRoundResponse
	decodeInto(t, body, &first)

	status, body = postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
		SessionID: "sess-1", RoundID: winning.RoundID,
	})
	if status != http.StatusOK {
		t.Fatalf("repeat end status = %d", status)
	}
	var second wire.EndRoundResponse
	decodeInto(t, body, &second)

	if second.Balance != first.Balance {
		t.Fatalf("repeat settle changed balance: %d != %d", second.Balance, first.Balance)
	}
}

func TestEndRoundUnknownRound(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	status, body := postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
		SessionID: "sess-1", RoundID: "r-bogus",
	})
	wantErrorCode(t, status, body, http.StatusBadRequest, wire.CodeValidation)
}

func TestOpenRoundReportedAndBlocksPlay(t *testing.T) {
	srv := httptest.NewServer(newTestAPI().Router())
	defer srv.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	var winning wire.PlayResponse
	for i := 0; i < 200; i++ {
		status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
			SessionID: "sess-1", Amount: "1000000",
		})
		if status != http.StatusOK {
			t.Fatalf("play status = %d", status)
		}
		decodeInto(t, body, &winning)
		if winning.Win > 0 {
			break
		}
	}
	if winning.Win == 0 {
		t.Fatalf("no winning round in 200 plays")
	}

	// rodada aberta aparece no authenticate seguinte
	status, body := postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	if status != http.StatusOK {
		t.Fatalf("auth status = %d", status)
	}
	var auth wire.AuthenticateResponse
	decodeInto(t, body, &auth)
	if auth.Round == nil || auth.Round.RoundID != winning.RoundID {
		t.Fatalf("round = %+v, want %s", auth.Round, winning.RoundID)
	}

	// e bloqueia novo play até liquidar
	status, body = postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "sess-1", Amount: "1000000",
	})
	wantErrorCode(t, status, body, http.StatusConflict, wire.CodeValidation)

	postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
		SessionID: "sess-1", RoundID: winning.RoundID,
	})

	status, body = postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})
	if status != http.StatusOK {
		t.Fatalf("auth status = %d", status)
	}
	auth = wire.AuthenticateResponse{}
	decodeInto(t, body, &auth)
	if auth.Round != nil {
		t.Fatalf("settled round still reported: %+v", auth.Round)
	}
}

func TestMaintenanceGate(t *testing.T) {
	api := newTestAPI()
	api.Maintenance = true
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	paths := []string{"/wallet/authenticate", "/wallet/play", "/wallet/end-round"}
	for _, p := range paths {
		status, body := postJSON(t, srv.URL+p, map[string]string{"sessionID": "sess-1"})
		wantErrorCode(t, status, body, http.StatusServiceUnavailable, wire.CodeMaintenance)
	}
}

func TestRoundFeedBroadcastsSettlements(t *testing.T) {
	api := newTestAPI()
	api.Feed = ws.NewHub(zap.NewNop())
	var mu sync.Mutex
	settles := 0
	api.OnSettle = func() { mu.Lock(); settles++; mu.Unlock() }
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rounds"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	postJSON(t, srv.URL+"/wallet/authenticate", wire.AuthenticateRequest{SessionID: "sess-1"})

	// toda rodada acaba liquidada: sem prêmio na hora, com prêmio no end-round
	status, body := postJSON(t, srv.URL+"/wallet/play", wire.PlayRequest{
		SessionID: "sess-1", Amount: "1000000",
	})
	if status != http.StatusOK {
		t.Fatalf("play status = %d", status)
	}
	var play wire.PlayResponse
	decodeInto(t, body, &play)
	if play.Win > 0 {
		postJSON(t, srv.URL+"/wallet/end-round", wire.EndRoundRequest{
			SessionID: "sess-1", RoundID: play.RoundID,
		})
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	var settled events.RoundSettled
	decodeInto(t, msg, &settled)
	if settled.RoundID != play.RoundID || settled.SessionID != "sess-1" {
		t.Fatalf("settled = %+v", settled)
	}
	if settled.SettledAt.IsZero() {
		t.Fatalf("settled_at missing")
	}
	mu.Lock()
	defer mu.Unlock()
	if settles != 1 {
		t.Fatalf("settle callback fired %d times", settles)
	}
}
