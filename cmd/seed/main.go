package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"spendly/internal/auth"
	"spendly/internal/config"
	"spendly/internal/db"
	"spendly/internal/model"
	"spendly/internal/repository"
)

const seedPassword = "password123"

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Expense{}); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	expenses := repository.NewExpenseRepository(gormDB)

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	admin := &model.User{
		Name:         "Admin",
		Email:        "admin@spendly.local",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	demo := &model.User{
		Name:         "Demo User",
		Email:        "demo@spendly.local",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	ensureUser := func(user *model.User) bool {
		if existing, err := users.FindByEmail(ctx, user.Email); err == nil {
			log.Printf("User %s already exists, skipping", user.Email)
			*user = *existing
			return false
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", user.Email, err)
		}
		log.Printf("Created user %s (password %q)", user.Email, seedPassword)
		return true
	}

	ensureUser(admin)
	if !ensureUser(demo) {
		// The demo user carries the sample expenses; re-running the seed must
		// not duplicate them.
		log.Println("Demo user already seeded, skipping sample expenses")
		log.Println("Seed complete")
		return
	}

	samples := []model.Expense{
		{Title: "Weekly groceries", Amount: decimal.NewFromFloat(84.20), Category: model.CategoryFood, SpentAt: daysAgo(2)},
		{Title: "Metro card top-up", Amount: decimal.NewFromFloat(30.00), Category: model.CategoryTransport, SpentAt: daysAgo(3)},
		{Title: "Electricity bill", Amount: decimal.NewFromFloat(61.75), Category: model.CategoryUtilities, SpentAt: daysAgo(7)},
		{Title: "Cinema tickets", Amount: decimal.NewFromFloat(24.00), Category: model.CategoryEntertainment, SpentAt: daysAgo(9)},
		{Title: "Rent", Amount: decimal.NewFromFloat(950.00), Category: model.CategoryHousing, SpentAt: daysAgo(14)},
	}

	for _, sample := range samples {
		sample.UserID = demo.ID
		if err := expenses.Create(ctx, &sample); err != nil {
			log.Fatalf("Failed to create expense %q: %v", sample.Title, err)
		}
	}
	log.Printf("Created %d expenses for %s", len(samples), demo.Email)

	log.Println("Seed complete")
}

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}
