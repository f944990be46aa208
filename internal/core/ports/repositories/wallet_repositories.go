package repositories

import (
	"context"
	"time"

	"github.com/sunucar/sunucar_backend/internal/core/domain"
)

// WalletMutator runs a pure mutation against a locked wallet aggregate and
// returns the ledger entry it created or transitioned (nil for
// configuration-only changes). The store persists the wallet row and the
// entry together, or nothing.
type WalletMutator func(w *domain.Wallet) (*domain.LedgerEntry, error)

// EntryFilter narrows a wallet history listing.
type EntryFilter struct {
	Type   *domain.EntryType
	Status *domain.EntryStatus
	From   *time.Time
	To     *time.Time
}

// WalletRepositoryFacade is the ledger store: per-wallet balance plus the
// ordered append-only entry history. ApplyEntry serializes writers on the
// same wallet; operations on different wallets are independent.
type WalletRepositoryFacade interface {
	// SaveWallet inserts a freshly provisioned wallet.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// FindWalletByID loads a wallet snapshot with its full entry history.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// FindWalletByUserID loads the wallet owned by a user.
	FindWalletByUserID(ctx context.Context, userID string) (*domain.Wallet, error)

	// ApplyEntry locks the wallet, runs the mutator, verifies the
	// reconciliation invariant, and commits wallet + entry atomically.
	// Returns the wallet and entry as committed.
	ApplyEntry(ctx context.Context, walletID string, fn WalletMutator) (*domain.Wallet, *domain.LedgerEntry, error)

	// UpdateSettings locks the wallet and applies a configuration-only
	// mutation (payout settings, auto-recharge policy).
	UpdateSettings(ctx context.Context, walletID string, fn func(w *domain.Wallet) error) (*domain.Wallet, error)

	// FindWalletIDByEntryID resolves the wallet owning an entry, for
	// confirmation callbacks addressed by entry ID.
	FindWalletIDByEntryID(ctx context.Context, entryID string) (string, error)

	// ListEntries returns a filtered, newest-first page of history and a
	// token for the next page.
	ListEntries(ctx context.Context, walletID string, filter EntryFilter, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}
