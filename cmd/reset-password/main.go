package main

import (
	"flag"
	"log"

	"go-storefront/internal/config"
	"go-storefront/internal/repository"
	"go-storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	login := flag.String("login", "admin", "login of the account to reset")
	password := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("-password is required and must be at least 6 characters")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DSN(), cfg.DBLogLevel)
	users := repository.NewUserRepo(db)

	// 3. Find user
	user, err := users.FindByLogin(*login)
	if err != nil {
		log.Fatalf("User %s not found in database: %v", *login, err)
	}

	// 4. Hash new password and end open sessions
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	user.TokenVersion = uuid.NewString()

	// 5. Update
	if err := users.Update(user); err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *login)
}
