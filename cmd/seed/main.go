// Command seed creates the demo users Alice, Bob, Charlie, David and Eve.
// Users that already exist are left untouched, so it is safe to run twice.
package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/meets/meets-go/internal/config"
	"github.com/meets/meets-go/internal/crypto"
	"github.com/meets/meets-go/internal/logger"
	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/repository"
	"github.com/rs/zerolog/log"
)

var demoUsers = []string{"Alice", "Bob", "Charlie", "David", "Eve"}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)

	if cfg.IsProduction() {
		log.Fatal().Msg("refusing to seed a production database")
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}

	db, err := repository.NewDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	users := repository.NewUserRepository(db)
	for _, name := range demoUsers {
		if err := seedUser(ctx, users, name, password); err != nil {
			log.Fatal().Err(err).Str("user", name).Msg("seeding failed")
		}
	}

	log.Info().Int("users", len(demoUsers)).Msg("seed complete")
}

func seedUser(ctx context.Context, users *repository.UserRepository, name, password string) error {
	email := strings.ToLower(name) + "@gmail.com"

	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Info().Str("email", email).Msg("user exists, skipping")
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	avatar, err := crypto.Avatar(name)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	err = users.Create(ctx, &model.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		Password:       hash,
		ProfilePicture: avatar,
		Bio:            sql.NullString{String: "test user", Valid: true},
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("user created")
	return nil
}
