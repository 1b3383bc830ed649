package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// runInteractive runs the menu-driven console loop
func runInteractive(client *apiClient) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("1. List doctors")
		fmt.Println("2. View queue")
		fmt.Println("3. Issue token")
		fmt.Println("4. Cancel token")
		fmt.Println("5. Delay queue")
		fmt.Println("6. Exit")
		choice := prompt(reader, "Select an option: ")

		switch choice {
		case "1":
			doctors, err := client.listDoctors()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			printDoctors(doctors)
		case "2":
			doctorID := prompt(reader, "Doctor ID: ")
			queue, err := client.getQueue(doctorID)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			printQueue(queue)
		case "3":
			doctorID := prompt(reader, "Doctor ID: ")
			source := prompt(reader, "Source (Online, Walk-in, Priority, Follow-up, Emergency): ")
			patient := prompt(reader, "Patient name: ")
			token, err := client.issueToken(doctorID, source, patient)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			fmt.Printf("Issued %s (estimated start %s)\n",
				token.TokenNumber, token.EstimatedStartTime.Local().Format("15:04"))
		case "4":
			tokenID := prompt(reader, "Token ID: ")
			token, err := client.cancelToken(tokenID)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			fmt.Printf("Cancelled %s\n", token.TokenNumber)
		case "5":
			doctorID := prompt(reader, "Doctor ID: ")
			minutesStr := prompt(reader, "Delay minutes: ")
			minutes, err := strconv.Atoi(minutesStr)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error: invalid minutes")
				continue
			}
			if err := client.addDelay(doctorID, minutes); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			fmt.Printf("Queue delayed by %d minutes\n", minutes)
		case "6", "q", "exit":
			return nil
		default:
			fmt.Println("Unknown option")
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
