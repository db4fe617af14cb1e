package database

import (
	"fmt"

	"cosound/domain"
	"cosound/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitPostgres opens the database and keeps the schema current. The vector
// columns need the pgvector extension, so that is created up front.
func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to create vector extension: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Player{},
		&domain.Vote{},
		&domain.PresenceSession{},
		&domain.PlayHistoryEntry{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// user_preference and tracks carry vector(5) columns, which AutoMigrate
	// cannot express; created directly instead.
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_preference (
			user_id BIGINT PRIMARY KEY,
			vector vector(5) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`).Error; err != nil {
		return nil, fmt.Errorf("failed to create user_preference: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			embedding vector(5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`).Error; err != nil {
		return nil, fmt.Errorf("failed to create tracks: %w", err)
	}

	return db, nil
}
