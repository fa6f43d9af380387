// Command admin_seed prepares a development database: it applies the
// schema, creates verified wallets for SEED_USER_IDS and prints signed
// admin and service tokens for calling the API locally.
package main

import (
	"context"
	"log"
	"strings"
	"time"

	"arenapay/internal/config"
	"arenapay/internal/models"
	"arenapay/internal/repositories"
	"arenapay/internal/services/wallet"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	if config.IsProduction() {
		log.Fatal("admin_seed must not run against production")
	}

	db, err := repositories.OpenDB(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		log.Fatal(err)
	}

	store := wallet.NewStore(repositories.NewWalletRepository(db), wallet.Config{
		DefaultCurrency:             cfg.Wallet.Currency,
		DefaultDailyLimit:           cfg.Wallet.DailyLimit,
		DefaultMonthlyLimit:         cfg.Wallet.MonthlyLimit,
		DefaultMaxTransactionAmount: cfg.Wallet.MaxTransactionAmount,
	}, nil, nil)

	ctx := context.Background()
	for _, userID := range strings.Split(config.GetEnv("SEED_USER_IDS", ""), ",") {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, err := store.GetOrCreate(ctx, userID); err != nil {
			log.Fatalf("Failed to create wallet for %s: %v", userID, err)
		}
		if _, err := store.SetVerificationStatus(ctx, userID, models.VerificationVerified); err != nil {
			log.Fatalf("Failed to verify wallet for %s: %v", userID, err)
		}
		log.Printf("✅ Wallet ready for %s", userID)
	}

	adminID := config.GetEnv("ADMIN_USER_ID", "admin")
	for _, role := range []string{models.RoleAdmin, models.RoleService} {
		subject := adminID
		if role == models.RoleService {
			subject = "tournament-service"
		}
		token, err := signToken(cfg.JWTSecret, subject, role)
		if err != nil {
			log.Fatalf("Failed to sign %s token: %v", role, err)
		}
		log.Printf("%s token: %s", role, token)
	}
}

func signToken(secret, userID, role string) (string, error) {
	now := time.Now()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
		UserID:      userID,
		Role:        role,
		Permissions: models.GetDefaultPermissions(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
