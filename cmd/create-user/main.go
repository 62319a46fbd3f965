package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/perivale/fitquest/internal/database"
	"github.com/perivale/fitquest/internal/store"
)

func main() {
	godotenv.Load()

	email := flag.String("email", "", "email address for the new user")
	name := flag.String("name", "", "display name (defaults to the email local part)")
	password := flag.String("password", "", "initial password (min 8 characters)")
	dbPath := flag.String("db", "", "path to the database file (defaults to FITQUEST_DB_PATH)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: create-user -email <email> -password <password> [-name <name>] [-db <path>]")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(1)
	}

	path := *dbPath
	if path == "" {
		path = os.Getenv("FITQUEST_DB_PATH")
	}
	if path == "" {
		path = "fitquest.db"
	}

	db, err := database.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	addr := strings.ToLower(strings.TrimSpace(*email))
	users := store.NewUserStore(db)

	existing, err := users.GetByEmail(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "look up user: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Fprintf(os.Stderr, "user %s already exists\n", addr)
		os.Exit(1)
	}

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = addr[:strings.Index(addr, "@")]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	user, err := users.Create(addr, displayName, string(hash))
	if err != nil {
		fmt.Fprintf(os.Stderr, "create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
}
