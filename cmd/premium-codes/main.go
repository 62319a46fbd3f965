package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/perivale/fitquest/internal/database"
	"github.com/perivale/fitquest/internal/store"
)

func main() {
	godotenv.Load()

	count := flag.Int("n", 1, "number of codes to generate")
	dbPath := flag.String("db", "", "path to the database file (defaults to FITQUEST_DB_PATH)")
	flag.Parse()

	if *count < 1 || *count > 1000 {
		fmt.Fprintln(os.Stderr, "n must be between 1 and 1000")
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

	codes, err := store.NewPremiumCodeStore(db).Generate(*count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate codes: %v\n", err)
		os.Exit(1)
	}

	for _, c := range codes {
		fmt.Println(c.Code)
	}
}
