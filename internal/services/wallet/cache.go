package wallet

import (
	"context"

	"arenapay/internal/repositories/cache"
	cachekeys "arenapay/internal/utils/cache"
)

// InvalidateUserCache drops the cached wallet view and every cached
// transaction read of userID.
func InvalidateUserCache(ctx context.Context, c cache.ReadCache, userID string) {
	c.Delete(ctx, cachekeys.WalletKey(userID))
	c.DeletePrefix(ctx, cachekeys.TransactionsPrefix(userID))
}
