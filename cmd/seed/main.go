package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/config"
	"queueless/internal/database"
	"queueless/internal/domain"
	"queueless/internal/logging"
	"queueless/internal/modules/auth"
	"queueless/internal/modules/catalog"
	"queueless/internal/modules/company"
	"queueless/internal/repository"
)

const demoSlug = "demo-barbershop"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	log := logger.With().Str("job", "seed").Logger()

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, db, cfg.Seed, log); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed completed")
}

func seed(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	admin, err := upsertAdmin(ctx, repository.NewUserRepository(db), cfg, log)
	if err != nil {
		return err
	}
	if !cfg.DemoCompany {
		return nil
	}
	return seedDemoCompany(ctx, db, admin.ID, log)
}

// upsertAdmin creates the platform admin or resets the password and role of
// an existing account with the same email.
func upsertAdmin(ctx context.Context, users *repository.UserRepository, cfg config.SeedConfig, log zerolog.Logger) (*domain.User, error) {
	email := strings.ToLower(cfg.AdminEmail)
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := users.UpdateFields(ctx, existing.ID, map[string]any{
			"password_hash": hash,
			"platform_role": domain.PlatformRoleAdmin,
		}); err != nil {
			return nil, fmt.Errorf("update admin: %w", err)
		}
		log.Info().Int64("user_id", existing.ID).Str("email", email).Msg("admin updated")
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	u := &domain.User{
		Email:        email,
		Name:         cfg.AdminName,
		PasswordHash: hash,
		PlatformRole: domain.PlatformRoleAdmin,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	log.Info().Int64("user_id", u.ID).Str("email", email).Msg("admin created")
	return u, nil
}

// seedDemoCompany is skipped when the demo slug already exists.
func seedDemoCompany(ctx context.Context, db *gorm.DB, ownerID int64, log zerolog.Logger) error {
	companies := repository.NewCompanyRepository(db)
	exists, err := companies.SlugExists(ctx, demoSlug, 0)
	if err != nil {
		return err
	}
	if exists {
		log.Info().Str("slug", demoSlug).Msg("demo company already present")
		return nil
	}

	companySvc := company.NewService(company.Deps{
		Companies: companies,
		Members:   repository.NewMembershipRepository(db),
		Users:     repository.NewUserRepository(db),
		Tx:        repository.NewTransactor(db),
		Logger:    log,
	})
	c := &domain.Company{
		Name:        "Demo Barbershop",
		Slug:        demoSlug,
		Description: "Walk-ins welcome",
		Address:     "1 Main Street",
	}
	if err := companySvc.CreateWithOwner(ctx, c, ownerID); err != nil {
		return fmt.Errorf("create demo company: %w", err)
	}

	for weekday := 1; weekday <= 5; weekday++ {
		if _, err := companySvc.ReplaceWorkingHours(ctx, c.ID, weekday, company.WorkingHoursRequest{
			OpenTime: "09:00", CloseTime: "18:00",
		}); err != nil {
			return fmt.Errorf("demo hours: %w", err)
		}
	}
	if _, err := companySvc.ReplaceWorkBreaks(ctx, c.ID, 1, company.WorkBreaksRequest{
		Breaks: []company.BreakInput{{StartTime: "13:00", EndTime: "14:00"}},
	}); err != nil {
		return fmt.Errorf("demo breaks: %w", err)
	}

	catalogSvc := catalog.NewService(repository.NewServiceRepository(db), companies, log)
	for _, req := range []catalog.CreateServiceRequest{
		{Name: "Haircut", DurationMinutes: 30, Price: 15},
		{Name: "Beard trim", DurationMinutes: 15, Price: 8},
	} {
		if _, err := catalogSvc.CreateService(ctx, c.ID, req); err != nil {
			return fmt.Errorf("demo service %q: %w", req.Name, err)
		}
	}

	log.Info().Int64("company_id", c.ID).Str("slug", demoSlug).Msg("demo company created")
	return nil
}
