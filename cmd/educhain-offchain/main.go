// Command educhain-offchain prepares the companion SQLite store and prints a
// user's purchases and course progress.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"educhain/config"
	"educhain/offchain"

	"github.com/hyperledger/fabric/common/flogging"
)

func main() {
	user := flag.Int64("user", 0, "print purchases and progress for this user id")
	flag.Parse()

	flogging.ActivateSpec(config.FromEnv().LogSpec)
	if err := run(config.OffchainFromEnv(), *user); err != nil {
		fmt.Fprintf(os.Stderr, "educhain-offchain: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Offchain, user int64) error {
	store, err := offchain.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open off-chain store: %w", err)
	}
	defer store.Close()

	if user == 0 {
		return nil
	}
	return report(context.Background(), store, user)
}

func report(ctx context.Context, store *offchain.Store, user int64) error {
	purchases, err := store.ListTransactionsForUser(ctx, user)
	if err != nil {
		return err
	}
	progress, err := store.ListProgressForUser(ctx, user)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Purchases []offchain.MarketplaceTransaction `json:"purchases"`
		Progress  []offchain.CourseProgress         `json:"progress"`
	}{purchases, progress})
}
