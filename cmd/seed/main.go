package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/staynest/staynest-api/internal/config"
	"github.com/staynest/staynest-api/internal/domain/property"
	"github.com/staynest/staynest-api/internal/domain/user"
	"github.com/staynest/staynest-api/internal/pkg/database"
	"github.com/staynest/staynest-api/internal/pkg/logger"
	"github.com/staynest/staynest-api/internal/pkg/password"
)

const (
	demoEmail    = "demo@staynest.dev"
	demoPassword = "Staynest2024"
)

// Fixed ids so reruns do not duplicate listings
var demoProperties = []property.Snapshot{
	{
		ID:            uuid.MustParse("7f1c2a8e-3b1d-4c55-9a0e-1d2f3a4b5c01"),
		Title:         "Seaside Loft",
		PricePerNight: 150,
		CleaningFee:   50,
		ServiceFee:    20,
		MaxGuests:     4,
		IsActive:      true,
		Type:          "apartment",
		Images:        pq.StringArray{"https://images.staynest.dev/seaside-loft-1.jpg"},
	},
	{
		ID:            uuid.MustParse("7f1c2a8e-3b1d-4c55-9a0e-1d2f3a4b5c02"),
		Title:         "Mountain Cabin",
		PricePerNight: 210.5,
		CleaningFee:   75,
		ServiceFee:    30,
		MaxGuests:     6,
		IsActive:      true,
		Type:          "cabin",
		Images:        pq.StringArray{},
	},
	{
		ID:            uuid.MustParse("7f1c2a8e-3b1d-4c55-9a0e-1d2f3a4b5c03"),
		Title:         "Closed Studio",
		PricePerNight: 80,
		MaxGuests:     2,
		IsActive:      false,
		Type:          "studio",
		Images:        pq.StringArray{},
	},
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "staynest-seed"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if err := seedUser(ctx, user.NewRepository(db)); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo user")
	}
	if err := seedProperties(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed properties")
	}

	var tables []string
	if err := db.SelectContext(ctx, &tables, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`); err != nil {
		log.Fatal().Err(err).Msg("Failed to query tables")
	}
	fmt.Println("--- Tables in DB ---")
	for _, name := range tables {
		fmt.Println(name)
	}
	fmt.Println("--------------------")
	fmt.Printf("Demo login: %s / %s\n", demoEmail, demoPassword)
}

func seedUser(ctx context.Context, repo user.Repository) error {
	existing, err := repo.GetByEmail(ctx, demoEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info().Str("email", demoEmail).Msg("Demo user already present")
		return nil
	}

	hash, err := password.Hash(demoPassword)
	if err != nil {
		return err
	}
	return repo.Create(ctx, &user.User{
		ID:           uuid.New(),
		Email:        demoEmail,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Guest",
	})
}

func seedProperties(ctx context.Context, db *sqlx.DB) error {
	query := `
		INSERT INTO properties (id, title, price_per_night, cleaning_fee, service_fee, max_guests, is_active, property_type, images)
		VALUES (:id, :title, :price_per_night, :cleaning_fee, :service_fee, :max_guests, :is_active, :property_type, :images)
		ON CONFLICT (id) DO NOTHING
	`
	for i := range demoProperties {
		if _, err := db.NamedExecContext(ctx, query, &demoProperties[i]); err != nil {
			return fmt.Errorf("seed property %s: %w", demoProperties[i].Title, err)
		}
	}
	log.Info().Int("count", len(demoProperties)).Msg("Properties seeded")
	return nil
}
