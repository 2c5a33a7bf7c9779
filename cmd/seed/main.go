package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/sladash/sladash/internal/adapter/persistence"
	"github.com/sladash/sladash/internal/domain"
)

// Seeds a small demo incident dataset so the dashboard has something to
// show on a fresh database.

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	repo := persistence.NewPostgresDatasetRepository(db)

	dataset := &domain.Dataset{
		ID:        uuid.New().String(),
		Name:      "Demo incidents",
		Class:     domain.TicketClassIncident,
		Period:    "2025-03",
		Records:   demoRecords(),
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.Create(ctx, dataset); err != nil {
		log.Fatalf("failed to seed dataset: %v", err)
	}

	log.Printf("seeded dataset %s with %d records", dataset.ID, len(dataset.Records))
}

func demoRecords() []domain.TicketRecord {
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) *time.Time {
		t := base.Add(offset)
		return &t
	}

	return []domain.TicketRecord{
		{
			ID: "INC-1001", Class: domain.TicketClassIncident,
			CreatedAt: at(0), ClosedAt: at(2 * time.Hour),
			Criticality: "1 - Critical", Severity: "1 - High",
			Item: "Email outage", Category: "Software",
			ServiceOffering: "Email", Location: "P. Benoa", Channel: "Phone",
		},
		{
			ID: "INC-1002", Class: domain.TicketClassIncident,
			CreatedAt: at(time.Hour), ClosedAt: at(9 * time.Hour),
			Criticality: "1 - Critical", Severity: "1 - High",
			Item: "Email outage", Category: "Software",
			ServiceOffering: "Email", Location: "Tanjung Perak", Channel: "ESS",
		},
		{
			ID: "INC-1003", Class: domain.TicketClassIncident,
			CreatedAt:   at(24 * time.Hour),
			Criticality: "3 - Medium", Severity: "2 - Medium",
			Item: "VPN drop", Category: "Network",
			ServiceOffering: "VPN", Location: "P. Benoa", Channel: "ESS",
		},
		{
			ID: "INC-1004", Class: domain.TicketClassIncident,
			CreatedAt: at(30 * time.Hour), ClosedAt: at(31 * time.Hour),
			Criticality: "4 - Low", Severity: "3 - Low",
			Item: "Printer jam", Category: "Hardware",
			ServiceOffering: "Printing", Location: "Terminal Nilam", Channel: "Phone",
		},
	}
}
