package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
)

var apiURL string

func main() {
	rootCmd := &cobra.Command{
		Use:   "opdctl",
		Short: "Manage OPD doctors and token queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(newAPIClient(apiURL))
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "base URL of the OPD API")

	rootCmd.AddCommand(doctorsCmd(), queueCmd(), issueCmd(), cancelCmd(), delayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List registered doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := newAPIClient(apiURL).listDoctors()
			if err != nil {
				return err
			}
			printDoctors(doctors)
			return nil
		},
	}
}

func queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue <doctor-id>",
		Short: "Show the live queue for a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := newAPIClient(apiURL).getQueue(args[0])
			if err != nil {
				return err
			}
			printQueue(queue)
			return nil
		},
	}
}

func issueCmd() *cobra.Command {
	var source, patientName string

	cmd := &cobra.Command{
		Use:   "issue <doctor-id>",
		Short: "Issue a token for a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := newAPIClient(apiURL).issueToken(args[0], source, patientName)
			if err != nil {
				return err
			}
			fmt.Printf("Issued %s (estimated start %s)\n",
				token.TokenNumber, token.EstimatedStartTime.Local().Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(entities.SourceWalkIn), "token source (Online, Walk-in, Priority, Follow-up, Emergency)")
	cmd.Flags().StringVar(&patientName, "patient", "", "patient name")

	return cmd
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <token-id>",
		Short: "Cancel a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := newAPIClient(apiURL).cancelToken(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled %s\n", token.TokenNumber)
			return nil
		},
	}
}

func delayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delay <doctor-id> <minutes>",
		Short: "Push back a doctor's queue by the given number of minutes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid minutes: %s", args[1])
			}
			if err := newAPIClient(apiURL).addDelay(args[0], minutes); err != nil {
				return err
			}
			fmt.Printf("Queue delayed by %d minutes\n", minutes)
			return nil
		},
	}
}

func printDoctors(doctors []*entities.Doctor) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tAVG (MIN)\tSLOTS")
	for _, d := range doctors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			d.ID, d.Name, d.Department, d.AvgConsultationTime, len(d.ActiveSlots))
	}
	w.Flush()
}

func printQueue(queue []*entities.Token) {
	if len(queue) == 0 {
		fmt.Println("Queue is empty")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tPATIENT\tSOURCE\tSCORE\tSTATUS\tEST START")
	for _, t := range queue {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
			t.TokenNumber, t.PatientName, t.Source, t.PriorityScore, t.Status,
			t.EstimatedStartTime.Local().Format("15:04"))
	}
	w.Flush()
}
