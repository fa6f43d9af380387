/*
Package wallet owns the per-user wallet: balances, cumulative totals,
rolling usage windows, limits and administrative restrictions.

The Store is the only writer of wallet rows. Every mutation persists
before returning and is paired by the caller with exactly one ledger
transaction.

Usage:

	store := wallet.NewStore(repo, wallet.Config{}, metrics, logger)

	unlock := store.Lock(userID)
	w, err := store.GetOrCreate(ctx, userID)
	if err == nil {
		err = store.CheckLimits(w, amount, models.TransactionTypeWithdrawal)
	}
	if err == nil {
		_, err = store.DeductFunds(ctx, w, amount, models.TransactionTypeWithdrawal)
	}
	unlock()

Concurrency:

Callers serialize read-check-write sequences for one user with Lock.
Locks are keyed by user id, so unrelated users never contend. Persistence
additionally checks the wallet version column; a conflicting writer in
another process causes the mutation to be reapplied on a fresh read.

Limits:

EvaluateLimits checks, in order, suspension, the per-transaction maximum
and, for withdrawals only, the daily and monthly ceilings. Usage windows
are reset when the stored day or month is no longer current.
*/
package wallet
