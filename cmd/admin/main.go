package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/domain/expense"
	"fintrack/internal/infrastructure/postgres"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/config"
)

const usage = `Fintrack Admin CLI - Management commands for the Fintrack API

Usage:
  admin <command> [options]

Commands:
  migrate   Apply pending database migrations
  audit     Check stored expenses against the recurrence rules
  token     Issue an access token for a user

Examples:
  # Bring the schema up to date
  admin migrate

  # Audit the expenses of a specific user
  admin audit --user-id=1

  # Audit several users
  admin audit --user-id=1,2,3

  # Audit every user with more workers
  admin audit --all --workers=8 --timeout=1h

  # Issue a token valid for one hour
  admin token --user-id=1 --ttl=1h
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate(os.Args[2:])
	case "audit":
		runAudit(os.Args[2:])
	case "token":
		runToken(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func connect(cfg *config.Config) *postgres.DB {
	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return db
}

func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: admin migrate")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db := connect(cfg)
	defer db.Close()

	version, err := postgres.RunMigrations(db)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Printf("Schema at version %d\n", version)
}

func runAudit(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to audit (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Audit all users with expenses")
	workers := fs.Int("workers", expense.DefaultWorkerCount, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin audit [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin audit --user-id=1")
		fmt.Println("  admin audit --user-id=1,2,3")
		fmt.Println("  admin audit --all --workers=8 --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db := connect(cfg)
	defer db.Close()

	audit := expense.NewAuditService(postgres.NewExpenseRepository(db), *workers)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64
	if *allUsers {
		userIDs, err = audit.AllUsers(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d users with expenses", len(userIDs))
	} else {
		userIDs, err = parseUserIDs(*userIDStr)
		if err != nil {
			log.Fatal(err)
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting audit for %d user(s) with %d workers", len(userIDs), *workers)
	startTime := time.Now()

	results := audit.AuditUsers(ctx, userIDs)
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	violations := 0
	for _, uid := range userIDs {
		result := results[uid]
		printAuditResult(uid, result)
		violations += len(result.Violations)
	}

	log.Printf("Audit completed in %v", time.Since(startTime))
	if violations > 0 {
		os.Exit(2)
	}
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user ID '%s'", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printAuditResult(userID int64, result *expense.AuditResult) {
	fmt.Printf("\n=== User %d ===\n", userID)
	if result.Err != nil {
		fmt.Printf("  Failed: %v\n", result.Err)
		return
	}
	fmt.Printf("  Expenses checked: %d\n", result.RecordsChecked)
	fmt.Printf("  Violations:       %d\n", len(result.Violations))

	for i, v := range result.Violations {
		if i >= 5 {
			fmt.Printf("    ... and %d more\n", len(result.Violations)-5)
			break
		}
		fmt.Printf("    - %s\n", v.Reason)
	}
}

func runToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)

	userID := fs.Int64("user-id", 0, "User ID the token is issued for")
	ttl := fs.Duration("ttl", auth.DefaultTTL, "Token lifetime")

	fs.Usage = func() {
		fmt.Println("Usage: admin token --user-id=N [--ttl=24h]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userID <= 0 {
		fmt.Println("Error: --user-id must be a positive integer")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := auth.NewJWT(cfg.JWT.Secret).Generate(*userID, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
