package cache

import (
	"fmt"
	"sort"
	"strings"
)

type EntityType string

const (
	EntityWallet       EntityType = "wallet"
	EntityTransactions EntityType = "transactions"
)

// WalletKey is the cache key of a user's wallet view.
func WalletKey(userID string) string {
	return fmt.Sprintf("%s:%s", EntityWallet, userID)
}

// TransactionsPrefix covers every cached transaction read of a user.
func TransactionsPrefix(userID string) string {
	return fmt.Sprintf("%s:%s:", EntityTransactions, userID)
}

// TransactionsKey creates a key for one transaction read of a user. The
// components are sorted so the same query always maps to the same key.
func TransactionsKey(userID, kind string, components map[string]string) string {
	parts := make([]string, 0, len(components))
	for k, v := range components {
		if v == "" {
			continue
		}
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	return TransactionsPrefix(userID) + kind + ":" + strings.Join(parts, "&")
}

// ParseKey extracts the entity and user id from a cache key.
func ParseKey(key string) (entity EntityType, userID string, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return "", "", false
	}
	return EntityType(parts[0]), parts[1], true
}
