package repo

import (
	"context"
	"database/sql"
)

// Postgres implementa o store do simulador em banco, com lock pessimista
// na carteira e ledger de débitos/créditos por rodada
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria as tabelas do simulador quando ainda não existem
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS spin_wallets (
			session_id     TEXT PRIMARY KEY,
			balance_micros BIGINT NOT NULL,
			version        BIGINT NOT NULL DEFAULT 1,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS spin_rounds (
			id         TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES spin_wallets(session_id),
			bet_micros BIGINT NOT NULL,
			win_micros BIGINT NOT NULL,
			mode       TEXT NOT NULL,
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			settled_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS spin_rounds_session_status
			ON spin_rounds(session_id, status)`,
		`CREATE TABLE IF NOT EXISTS spin_ledger (
			id             BIGSERIAL PRIMARY KEY,
			session_id     TEXT NOT NULL,
			operation_type TEXT NOT NULL,
			amount_micros  BIGINT NOT NULL,
			round_id       TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreateWallet retorna o saldo da carteira da sessão, criando com o
// saldo inicial se não existir. Usa transação para garantir atomicidade.
func (p *Postgres) GetOrCreateWallet(ctx context.Context, sessionID string, startBalanceMicros int64) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT balance_micros FROM spin_wallets WHERE session_id=$1`, sessionID).Scan(&bal)
	if err == sql.ErrNoRows {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO spin_wallets(session_id, balance_micros) VALUES($1,$2)`,
			sessionID, startBalanceMicros); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO spin_ledger(session_id, operation_type, amount_micros) VALUES($1,'PROVISION',$2)`,
			sessionID, startBalanceMicros); err != nil {
			return 0, err
		}
		bal = startBalanceMicros
	} else if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return bal, nil
}

// OpenRoundID informa a rodada aberta da sessão, se houver
func (p *Postgres) OpenRoundID(ctx context.Context, sessionID string) (string, bool, error) {
	var id string
	err := p.db.QueryRowContext(ctx,
		`SELECT id FROM spin_rounds WHERE session_id=$1 AND status=$2`,
		sessionID, RoundStatusOpen).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// PlaceRound debita a aposta e registra a rodada dentro de uma transação
// com lock pessimista na carteira
func (p *Postgres) PlaceRound(ctx context.Context, pr PlaceRound) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_micros FROM spin_wallets WHERE session_id=$1 FOR UPDATE`,
		pr.SessionID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrInsufficientFunds
		}
		return 0, err
	}

	var open string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM spin_rounds WHERE session_id=$1 AND status=$2`,
		pr.SessionID, RoundStatusOpen).Scan(&open)
	if err == nil {
		return 0, ErrRoundStillOpen
	} else if err != sql.ErrNoRows {
		return 0, err
	}

	if balance < pr.DebitMicros {
		return 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE spin_wallets SET balance_micros = balance_micros - $1, version = version + 1 WHERE session_id=$2`,
		pr.DebitMicros, pr.SessionID); err != nil {
		return 0, err
	}

	if pr.Open {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO spin_rounds(id, session_id, bet_micros, win_micros, mode, status)
			 VALUES($1,$2,$3,$4,$5,$6)`,
			pr.RoundID, pr.SessionID, pr.DebitMicros, pr.WinMicros, pr.Mode, RoundStatusOpen); err != nil {
			return 0, err
		}
	} else {
		// rodada sem prêmio nasce liquidada
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO spin_rounds(id, session_id, bet_micros, win_micros, mode, status, settled_at)
			 VALUES($1,$2,$3,$4,$5,$6,now())`,
			pr.RoundID, pr.SessionID, pr.DebitMicros, pr.WinMicros, pr.Mode, RoundStatusClosed); err != nil {
			return 0, err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO spin_ledger(session_id, operation_type, amount_micros, round_id) VALUES($1,'DEBIT',$2,$3)`,
		pr.SessionID, pr.DebitMicros, pr.RoundID); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance_micros FROM spin_wallets WHERE session_id=$1`, pr.SessionID).Scan(&balance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// SettleRound credita o prêmio e fecha a rodada
// Idempotente: rodada já fechada devolve o saldo atual sem novo crédito
func (p *Postgres) SettleRound(ctx context.Context, sessionID, roundID string) (Settlement, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Settlement{}, err
	}
	defer tx.Rollback()

	var (
		bet, win int64
		mode     string
		status   string
	)
	if err = tx.QueryRowContext(ctx, `
		SELECT r.bet_micros, r.win_micros, r.mode, r.status
		FROM spin_rounds r
		WHERE r.id=$1 AND r.session_id=$2
		FOR UPDATE`, roundID, sessionID).Scan(&bet, &win, &mode, &status); err != nil {
		if err == sql.ErrNoRows {
			return Settlement{}, ErrRoundNotFound
		}
		return Settlement{}, err
	}

	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_micros FROM spin_wallets WHERE session_id=$1 FOR UPDATE`,
		sessionID).Scan(&balance); err != nil {
		return Settlement{}, err
	}

	if status == RoundStatusClosed {
		if err = tx.Commit(); err != nil {
			return Settlement{}, err
		}
		return Settlement{
			WinMicros:     win,
			BalanceMicros: balance,
			BetMicros:     bet,
			Mode:          mode,
			AlreadyClosed: true,
		}, nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE spin_wallets SET balance_micros = balance_micros + $1, version = version + 1 WHERE session_id=$2`,
		win, sessionID); err != nil {
		return Settlement{}, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE spin_rounds SET status=$1, settled_at=now() WHERE id=$2`,
		RoundStatusClosed, roundID); err != nil {
		return Settlement{}, err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO spin_ledger(session_id, operation_type, amount_micros, round_id) VALUES($1,'CREDIT',$2,$3)`,
		sessionID, win, roundID); err != nil {
		return Settlement{}, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance_micros FROM spin_wallets WHERE session_id=$1`, sessionID).Scan(&balance); err != nil {
		return Settlement{}, err
	}

	if err = tx.Commit(); err != nil {
		return Settlement{}, err
	}
	return Settlement{
		WinMicros:     win,
		BalanceMicros: balance,
		BetMicros:     bet,
		Mode:          mode,
	}, nil
}
