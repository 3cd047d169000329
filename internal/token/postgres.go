package token

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stakevault/stakevault/internal/identity"
)

// PostgresLedger persists mints and token accounts in PostgreSQL. Every
// operation runs in a single transaction with row locks, so a failed call
// leaves no partial effect.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed token ledger.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureSchema creates the token ledger tables when they do not exist.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS token_mints (
            address TEXT PRIMARY KEY,
            authority TEXT NOT NULL,
            decimals SMALLINT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS token_accounts (
            address TEXT PRIMARY KEY,
            mint TEXT NOT NULL REFERENCES token_mints(address),
            owner TEXT NOT NULL,
            balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
        )`)
	return err
}

// CreateMint registers a mint.
func (l *PostgresLedger) CreateMint(ctx context.Context, mint Mint) error {
	tag, err := l.db.Exec(ctx, `INSERT INTO token_mints (address, authority, decimals)
        VALUES ($1, $2, $3) ON CONFLICT (address) DO NOTHING`,
		mint.Address.String(), mint.Authority.String(), int16(mint.Decimals))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMintExists
	}
	return nil
}

// CreateAccount registers a zero-balance holding account for a mint.
func (l *PostgresLedger) CreateAccount(ctx context.Context, account Account) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM token_mints WHERE address = $1)`,
		account.Mint.String()).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownMint, account.Mint)
	}

	tag, err := tx.Exec(ctx, `INSERT INTO token_accounts (address, mint, owner, balance)
        VALUES ($1, $2, $3, 0) ON CONFLICT (address) DO NOTHING`,
		account.Address.String(), account.Mint.String(), account.Owner.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountExists
	}

	return tx.Commit(ctx)
}

// Account fetches a token account.
func (l *PostgresLedger) Account(ctx context.Context, address identity.Identity) (Account, error) {
	row := l.db.QueryRow(ctx, `SELECT address, mint, owner, balance
        FROM token_accounts WHERE address = $1`, address.String())
	return scanAccount(row, address)
}

// Balance returns the balance of a token account.
func (l *PostgresLedger) Balance(ctx context.Context, address identity.Identity) (uint64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM token_accounts WHERE address = $1`,
		address.String()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}

// MintTo issues tokens into an account; only the mint authority may call it.
func (l *PostgresLedger) MintTo(ctx context.Context, mint, to identity.Identity, authority identity.Identity, amount uint64) (uint64, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var mintAuthority string
	err = tx.QueryRow(ctx, `SELECT authority FROM token_mints WHERE address = $1`,
		mint.String()).Scan(&mintAuthority)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if err != nil {
		return 0, err
	}
	if mintAuthority != authority.String() {
		return 0, ErrNotMintAuthority
	}

	account, err := lockAccount(ctx, tx, to)
	if err != nil {
		return 0, err
	}
	if account.Mint != mint {
		return 0, fmt.Errorf("%w: account %s does not hold mint %s", ErrWrongTokenType, to, mint)
	}

	// Balances live in a BIGINT column, so math.MaxInt64 is the ceiling.
	if amount > math.MaxInt64 || account.Balance > math.MaxInt64-amount {
		return 0, fmt.Errorf("%w: %d + %d", ErrBalanceOverflow, account.Balance, amount)
	}

	newBalance := account.Balance + amount
	if _, err := tx.Exec(ctx, `UPDATE token_accounts SET balance = $1 WHERE address = $2`,
		int64(newBalance), to.String()); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transfer moves tokens between two accounts of the same mint, authorized by
// the source account's owner.
func (l *PostgresLedger) Transfer(ctx context.Context, from, to identity.Identity, authority identity.TransferAuthority, amount uint64) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	source, err := lockAccount(ctx, tx, from)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	dest, err := lockAccount(ctx, tx, to)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	if source.Mint != dest.Mint {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrWrongTokenType)
	}
	if authority.AuthorityID() != source.Owner {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrNotOwner)
	}
	if source.Balance < amount {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrInsufficientBalance)
	}
	if amount > math.MaxInt64 || dest.Balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrBalanceOverflow)
	}

	if _, err := tx.Exec(ctx, `UPDATE token_accounts SET balance = balance - $1 WHERE address = $2`,
		int64(amount), from.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE token_accounts SET balance = balance + $1 WHERE address = $2`,
		int64(amount), to.String()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func lockAccount(ctx context.Context, tx pgx.Tx, address identity.Identity) (Account, error) {
	row := tx.QueryRow(ctx, `SELECT address, mint, owner, balance
        FROM token_accounts WHERE address = $1 FOR UPDATE`, address.String())
	return scanAccount(row, address)
}

func scanAccount(row pgx.Row, address identity.Identity) (Account, error) {
	var addr, mint, owner string
	var balance int64
	if err := row.Scan(&addr, &mint, &owner, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
		}
		return Account{}, err
	}

	account := Account{Balance: uint64(balance)}
	var err error
	if account.Address, err = identity.Parse(addr); err != nil {
		return Account{}, err
	}
	if account.Mint, err = identity.Parse(mint); err != nil {
		return Account{}, err
	}
	if account.Owner, err = identity.Parse(owner); err != nil {
		return Account{}, err
	}
	return account, nil
}
