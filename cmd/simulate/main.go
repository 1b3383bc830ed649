package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/elastic-opd/internal/adapters/database"
	"github.com/zatekoja/elastic-opd/internal/application/services"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/observability"
	"github.com/zatekoja/elastic-opd/pkg/config"
)

// Demo script: seeds doctors, issues a mixed batch of tokens, injects an
// emergency, delays the queue, cancels a token, and prints the queue after
// each step.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("elastic-opd-simulate", cfg.App.Environment)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	doctorRepo := database.NewDoctorAdapter(pgClient)
	tokenRepo := database.NewTokenAdapter(pgClient)
	queueService := services.NewQueueService(doctorRepo, tokenRepo)

	ctx := context.Background()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	slotStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, time.UTC)

	seed := []struct {
		name       string
		department string
		avgMinutes int
		capacity   int
	}{
		{"Dr. Sharma", "Cardiology", 10, 6},
		{"Dr. Verma", "Orthopedics", 15, 4},
		{"Dr. Gupta", "General Medicine", 5, 10},
	}

	doctors := make([]*entities.Doctor, 0, len(seed))
	for _, s := range seed {
		now := time.Now().UTC()
		doctor := &entities.Doctor{
			ID:                  uuid.New().String(),
			Name:                s.name,
			Department:          s.department,
			AvgConsultationTime: s.avgMinutes,
			ActiveSlots: []entities.Slot{
				{Start: slotStart, End: slotStart.Add(time.Hour), MaxCapacity: s.capacity},
				{Start: slotStart.Add(time.Hour), End: slotStart.Add(2 * time.Hour), MaxCapacity: s.capacity},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := doctorRepo.Create(ctx, doctor); err != nil {
			log.Fatal().Err(err).Str("doctor", s.name).Msg("Failed to seed doctor")
		}
		doctors = append(doctors, doctor)
		fmt.Printf("Seeded %s (%s), %d min avg, %d per slot\n",
			doctor.Name, doctor.Department, s.avgMinutes, s.capacity)
	}

	cardio := doctors[0]

	fmt.Println("\n--- Issuing a mixed batch of tokens ---")
	sources := []entities.TokenSource{
		entities.SourceWalkIn, entities.SourceOnline, entities.SourceWalkIn,
		entities.SourcePriority, entities.SourceOnline, entities.SourceWalkIn,
		entities.SourceFollowUp, entities.SourceOnline, entities.SourceWalkIn,
		entities.SourcePriority, entities.SourceWalkIn, entities.SourceOnline,
		entities.SourceFollowUp, entities.SourceWalkIn, entities.SourceOnline,
	}
	for i, source := range sources {
		token, err := queueService.IssueToken(ctx, cardio.ID, source, fmt.Sprintf("Patient %d", i+1))
		if err != nil {
			fmt.Printf("  %s token rejected: %v\n", source, err)
			continue
		}
		fmt.Printf("  Issued %s (%s)\n", token.TokenNumber, token.Source)
	}
	printQueue(ctx, queueService, cardio.ID)

	fmt.Println("\n--- Emergency arrives ---")
	emergency, err := queueService.IssueToken(ctx, cardio.ID, entities.SourceEmergency, "Emergency Patient")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue emergency token")
	}
	fmt.Printf("  Issued %s (%s)\n", emergency.TokenNumber, emergency.Source)
	printQueue(ctx, queueService, cardio.ID)

	fmt.Println("\n--- Doctor delayed by 15 minutes ---")
	if err := queueService.ApplyDelay(ctx, cardio.ID, 15); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply delay")
	}
	printQueue(ctx, queueService, cardio.ID)

	fmt.Println("\n--- Cancelling the highest-priority non-emergency token ---")
	queue, err := queueService.GetQueue(ctx, cardio.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch queue")
	}
	for _, t := range queue {
		if t.Source == entities.SourceEmergency || t.Status != entities.StatusWaiting {
			continue
		}
		if _, err := queueService.CancelToken(ctx, t.ID); err != nil {
			log.Fatal().Err(err).Str("token", t.TokenNumber).Msg("Failed to cancel token")
		}
		fmt.Printf("  Cancelled %s (%s)\n", t.TokenNumber, t.Source)
		break
	}
	printQueue(ctx, queueService, cardio.ID)
}

func printQueue(ctx context.Context, svc *services.QueueService, doctorID string) {
	queue, err := svc.GetQueue(ctx, doctorID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch queue")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tSOURCE\tSCORE\tSTATUS\tEST START")
	for _, t := range queue {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\t%s\n",
			t.TokenNumber, t.Source, t.PriorityScore, t.Status,
			t.EstimatedStartTime.Format("15:04"))
	}
	w.Flush()
}
