package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/seed"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		run(func(s *seed.Seeder) error { return s.SeedDev() })
	case "test":
		run(func(s *seed.Seeder) error { return s.SeedTest() })
	default:
		fmt.Println("Usage: seed [dev|test]")
		fmt.Println("  dev  - Seed development database with realistic data")
		fmt.Println("  test - Seed test database with fixed accounts")
		os.Exit(1)
	}
}

func run(fn func(*seed.Seeder) error) {
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := fn(seed.NewSeeder(database.DB)); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed")
}
