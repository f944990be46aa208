package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sunucar/sunucar_backend/internal/apperrors"
	"github.com/sunucar/sunucar_backend/internal/core/domain"
	portsrepo "github.com/sunucar/sunucar_backend/internal/core/ports/repositories"
	"github.com/sunucar/sunucar_backend/internal/models"
	"github.com/sunucar/sunucar_backend/internal/utils/mapping"
	"github.com/sunucar/sunucar_backend/internal/utils/pagination"
)

// PgxWalletRepository is the ledger store: wallet rows plus an append-only
// wallet_entries table. Mutations lock the wallet row so writers on the
// same wallet are serialized; different wallets never contend.
type PgxWalletRepository struct {
	BaseRepository
}

// NewWalletRepository creates a new repository for wallet and entry data.
func NewWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

const walletColumns = `
	wallet_id, user_id, balance, minimum_threshold,
	auto_recharge_active, auto_recharge_threshold, auto_recharge_amount, auto_recharge_method,
	payout_mobile_number, payout_operator, payout_holder_name,
	daily_cap, monthly_cap, withdrawn_today, withdrawn_this_month, day_anchor, month_anchor,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `
	entry_id, wallet_id, entry_type, amount, status,
	method, idempotency_key, ride_ref, origin, created_at, settled_at`

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SaveWallet inserts a freshly provisioned wallet.
func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	m := mapping.ToModelWallet(wallet)
	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.WalletID, m.UserID, m.Balance, m.MinimumThreshold,
		m.AutoRechargeActive, m.AutoRechargeThreshold, m.AutoRechargeAmount, m.AutoRechargeMethod,
		m.PayoutMobileNumber, m.PayoutOperator, m.PayoutHolderName,
		m.DailyCap, m.MonthlyCap, m.WithdrawnToday, m.WithdrawnThisMonth, m.DayAnchor, m.MonthAnchor,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert wallet "+m.WalletID, err)
	}
	return nil
}

// FindWalletByID loads a wallet snapshot with its full entry history.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	return r.findWallet(ctx, r.Pool, walletID, false)
}

// FindWalletByUserID loads the wallet owned by a user.
func (r *PgxWalletRepository) FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	var walletID string
	err := r.Pool.QueryRow(ctx, `SELECT wallet_id FROM wallets WHERE user_id = $1;`, userID).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wallet for user "+userID, err)
	}
	return r.FindWalletByID(ctx, walletID)
}

// FindWalletIDByEntryID resolves the wallet owning an entry.
func (r *PgxWalletRepository) FindWalletIDByEntryID(ctx context.Context, entryID string) (string, error) {
	var walletID string
	err := r.Pool.QueryRow(ctx, `SELECT wallet_id FROM wallet_entries WHERE entry_id = $1;`, entryID).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to resolve entry "+entryID, err)
	}
	return walletID, nil
}

// ApplyEntry locks the wallet row, runs the mutator against the aggregate,
// verifies the reconciliation invariant, and persists the wallet and the
// touched entry in one transaction. Either both land or neither does.
func (r *PgxWalletRepository) ApplyEntry(ctx context.Context, walletID string, fn portsrepo.WalletMutator) (*domain.Wallet, *domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	wallet, err := r.findWallet(ctx, tx, walletID, true)
	if err != nil {
		return nil, nil, err
	}

	existing := make(map[string]struct{}, len(wallet.Entries))
	for i := range wallet.Entries {
		existing[wallet.Entries[i].EntryID] = struct{}{}
	}

	entry, err := fn(wallet)
	if err != nil {
		return nil, nil, err
	}

	if err := wallet.Reconcile(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "wallet invariant violated, aborting mutation", err)
	}

	if err := r.updateWallet(ctx, tx, *wallet); err != nil {
		return nil, nil, err
	}
	if entry != nil {
		if _, ok := existing[entry.EntryID]; ok {
			err = r.updateEntry(ctx, tx, *entry)
		} else {
			err = r.insertEntry(ctx, tx, *entry)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return wallet, entry, nil
}

// UpdateSettings locks the wallet and applies a configuration-only
// mutation (payout settings, auto-recharge policy).
func (r *PgxWalletRepository) UpdateSettings(ctx context.Context, walletID string, fn func(w *domain.Wallet) error) (*domain.Wallet, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	wallet, err := r.findWallet(ctx, tx, walletID, true)
	if err != nil {
		return nil, err
	}
	if err := fn(wallet); err != nil {
		return nil, err
	}
	if err := r.updateWallet(ctx, tx, *wallet); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListEntries returns a filtered, newest-first page of history using
// cursor pagination keyed on (created_at, entry_id).
func (r *PgxWalletRepository) ListEntries(ctx context.Context, walletID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM wallet_entries WHERE wallet_id = $1`
	args := []any{walletID}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		query += ` AND entry_type = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND created_at < $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntryID, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		args = append(args, lastCreatedAt, lastEntryID)
		query += fmt.Sprintf(` AND (created_at, entry_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for wallet "+walletID, err)
	}
	defer rows.Close()

	modelEntries := []models.WalletEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for wallet "+walletID, err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for wallet "+walletID, err)
	}

	var next *string
	if len(modelEntries) > limit {
		modelEntries = modelEntries[:limit]
		last := modelEntries[len(modelEntries)-1]
		token := pagination.EncodeEntryToken(last.CreatedAt, last.EntryID)
		next = &token
	}
	return mapping.ToDomainWalletEntrySlice(modelEntries), next, nil
}

func (r *PgxWalletRepository) findWallet(ctx context.Context, q rowQuerier, walletID string, forUpdate bool) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	query += `;`

	var m models.Wallet
	err := q.QueryRow(ctx, query, walletID).Scan(
		&m.WalletID, &m.UserID, &m.Balance, &m.MinimumThreshold,
		&m.AutoRechargeActive, &m.AutoRechargeThreshold, &m.AutoRechargeAmount, &m.AutoRechargeMethod,
		&m.PayoutMobileNumber, &m.PayoutOperator, &m.PayoutHolderName,
		&m.DailyCap, &m.MonthlyCap, &m.WithdrawnToday, &m.WithdrawnThisMonth, &m.DayAnchor, &m.MonthAnchor,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find wallet "+walletID, err)
	}

	wallet := mapping.ToDomainWallet(m)
	entries, err := r.loadEntries(ctx, q, walletID)
	if err != nil {
		return nil, err
	}
	wallet.Entries = entries
	return &wallet, nil
}

// loadEntries returns the full history in insertion order, which is the
// chronological order the aggregate relies on.
func (r *PgxWalletRepository) loadEntries(ctx context.Context, q rowQuerier, walletID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM wallet_entries WHERE wallet_id = $1 ORDER BY created_at, entry_id;`
	rows, err := q.Query(ctx, query, walletID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for wallet "+walletID, err)
	}
	defer rows.Close()

	modelEntries := []models.WalletEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for wallet "+walletID, err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for wallet "+walletID, err)
	}
	return mapping.ToDomainWalletEntrySlice(modelEntries), nil
}

func scanEntry(rows pgx.Rows) (models.WalletEntry, error) {
	var m models.WalletEntry
	err := rows.Scan(
		&m.EntryID, &m.WalletID, &m.EntryType, &m.Amount, &m.Status,
		&m.Method, &m.IdempotencyKey, &m.RideRef, &m.Origin, &m.CreatedAt, &m.SettledAt,
	)
	return m, err
}

func (r *PgxWalletRepository) updateWallet(ctx context.Context, tx pgx.Tx, wallet domain.Wallet) error {
	m := mapping.ToModelWallet(wallet)
	query := `
		UPDATE wallets SET
			balance = $2, minimum_threshold = $3,
			auto_recharge_active = $4, auto_recharge_threshold = $5, auto_recharge_amount = $6, auto_recharge_method = $7,
			payout_mobile_number = $8, payout_operator = $9, payout_holder_name = $10,
			daily_cap = $11, monthly_cap = $12, withdrawn_today = $13, withdrawn_this_month = $14,
			day_anchor = $15, month_anchor = $16,
			last_updated_at = $17, last_updated_by = $18
		WHERE wallet_id = $1;
	`
	_, err := tx.Exec(ctx, query,
		m.WalletID, m.Balance, m.MinimumThreshold,
		m.AutoRechargeActive, m.AutoRechargeThreshold, m.AutoRechargeAmount, m.AutoRechargeMethod,
		m.PayoutMobileNumber, m.PayoutOperator, m.PayoutHolderName,
		m.DailyCap, m.MonthlyCap, m.WithdrawnToday, m.WithdrawnThisMonth,
		m.DayAnchor, m.MonthAnchor,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update wallet "+m.WalletID, err)
	}
	return nil
}

func (r *PgxWalletRepository) insertEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelWalletEntry(entry)
	query := `
		INSERT INTO wallet_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID, m.WalletID, m.EntryType, m.Amount, m.Status,
		m.Method, m.IdempotencyKey, m.RideRef, m.Origin, m.CreatedAt, m.SettledAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+m.EntryID, err)
	}
	return nil
}

func (r *PgxWalletRepository) updateEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelWalletEntry(entry)
	query := `UPDATE wallet_entries SET status = $2, settled_at = $3 WHERE entry_id = $1;`
	_, err := tx.Exec(ctx, query, m.EntryID, m.Status, m.SettledAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry "+m.EntryID, err)
	}
	return nil
}
