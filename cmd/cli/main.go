package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iho/payflow/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payflow-cli",
		Short: "Payflow CLI tool",
		Long:  `A command line interface for interacting with the Payflow API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Payflow API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Payment commands
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment operations",
	}

	var (
		source         string
		destination    string
		amount         string
		currency       string
		description    string
		idempotencyKey string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment and run it to a terminal state",
		Run: func(cmd *cobra.Command, args []string) {
			if idempotencyKey == "" {
				idempotencyKey = uuid.NewString()
			}
			createPayment(source, destination, amount, currency, description, idempotencyKey)
		},
	}
	createCmd.Flags().StringVar(&source, "from", "", "Source account ID")
	createCmd.Flags().StringVar(&destination, "to", "", "Destination account ID")
	createCmd.Flags().StringVar(&amount, "amount", "", "Payment amount")
	createCmd.Flags().StringVar(&currency, "currency", "USD", "Payment currency")
	createCmd.Flags().StringVar(&description, "description", "", "Payment description")
	createCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (generated when empty)")
	createCmd.MarkFlagRequired("from")
	createCmd.MarkFlagRequired("to")
	createCmd.MarkFlagRequired("amount")

	statusCmd := &cobra.Command{
		Use:   "status <payment-id>",
		Short: "Show a payment's current state",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/payments/"+args[0], printPayment)
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel <payment-id>",
		Short: "Cancel a pending payment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cancelPayment(args[0])
		},
	}

	paymentCmd.AddCommand(createCmd, statusCmd, cancelCmd)
	rootCmd.AddCommand(paymentCmd)

	// Balance command
	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account's actual and available balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/"+args[0]+"/balance", printBalance)
		},
	}
	rootCmd.AddCommand(balanceCmd)

	// Reconciliation command
	reconciliationCmd := &cobra.Command{
		Use:   "reconciliation",
		Short: "List payments awaiting manual reconciliation",
		Run: func(cmd *cobra.Command, args []string) {
			listReconciliation()
		},
	}
	rootCmd.AddCommand(reconciliationCmd)

	// Migration commands
	var (
		databaseURL    string
		migrationsPath string
	)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "migrations-path", "internal/infrastructure/postgres/migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Migration FAILED: %v\n", err)
				os.Exit(1)
			}
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Rollback FAILED: %v\n", err)
				os.Exit(1)
			}
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createPayment(source, destination, amount, currency, description, idempotencyKey string) {
	payload, _ := json.Marshal(map[string]string{
		"source_account_id":      source,
		"destination_account_id": destination,
		"amount":                 amount,
		"currency":               currency,
		"description":            description,
	})

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/payments/", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		fmt.Printf("Payment creation FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printPayment(result)
}

func cancelPayment(id string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/payments/"+id+"/cancel", "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Cancel FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printPayment(result)
}

func listReconciliation() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/reconciliation")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No payments awaiting reconciliation.")
		return
	}

	for _, entry := range entries {
		payment, _ := entry["payment"].(map[string]any)
		fmt.Printf("%s  reservation=%s  transaction=%s  %s\n",
			stringField(payment, "id"),
			stringField(entry, "reservation_status"),
			stringField(entry, "transaction_status"),
			truncate(stringField(payment, "failure_reason"), 60))
	}
}

func getJSON(path string, printer func(map[string]any)) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printer(result)
}

func printPayment(p map[string]any) {
	fmt.Printf("Payment: %s\n", stringField(p, "id"))
	fmt.Printf("Status:  %s\n", stringField(p, "status"))
	fmt.Printf("Amount:  %s %s\n", stringField(p, "amount"), stringField(p, "currency"))
	if reason := stringField(p, "failure_reason"); reason != "" {
		fmt.Printf("Reason:  %s\n", reason)
	}
}

func printBalance(b map[string]any) {
	fmt.Printf("Account:   %s\n", stringField(b, "account_id"))
	fmt.Printf("Balance:   %s %s\n", stringField(b, "balance"), stringField(b, "currency"))
	fmt.Printf("Available: %s %s\n", stringField(b, "available"), stringField(b, "currency"))
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
