package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gigmile/payments-microservice/internal/config"
	_ "github.com/go-sql-driver/mysql"
)

// Seeds sample payments. Run the API once first so the payments table exists.
func main() {
	cfg := config.Load()

	db, err := sql.Open("mysql", cfg.MySQL.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping MySQL: %v\nHost: %s Database: %s",
			err, cfg.MySQL.Host, cfg.MySQL.Database)
	}

	fmt.Println("Connected to MySQL successfully")

	today := time.Now()
	payments := []struct {
		method      string
		origin      string
		destination string
		amount      string
		daysAhead   int
	}{
		{"card", "ACC00001", "0123456789", "150.00", 0},
		{"card", "ACC00001", "9876543210", "20.50", 3},
		{"transfer", "ACC00001", "5555555555", "999.99", 7},
		{"transfer", "ACC00002", "0123456789", "45.00", 1},
		{"cash", "ACC00003", "1111111111", "10.00", 0},
	}

	query := `
		INSERT INTO payments (payment_method, origin, destination, amount,
		                      payment_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, p := range payments {
		date := today.AddDate(0, 0, p.daysAhead).Format("2006-01-02")
		_, err := db.Exec(query, p.method, p.origin, p.destination, p.amount, date, today, today)
		if err != nil {
			log.Fatalf("Failed to seed payment for %s: %v", p.origin, err)
		}

		fmt.Printf("Seeded payment: %s -> %s (%s on %s)\n", p.origin, p.destination, p.amount, date)
	}

	fmt.Println("\nSeed completed successfully!")
	fmt.Println("You can now test the API with user IDs: ACC00001 to ACC00003")
}
