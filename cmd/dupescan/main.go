// Command dupescan audits the ledger against the remote similarity index:
// it re-searches every enrolled member of a group and reports identifiers
// that collide with more than one stored identity. Read-only; repair is a
// human decision.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	_ "github.com/lib/pq"

	"facesign/internal/facetec"
	"facesign/internal/ledger"
	"facesign/internal/platform/config"
	"facesign/internal/platform/logger"
)

func main() {
	cfg := config.FromEnv()
	group := flag.String("group", cfg.DefaultGroup, "enrollment group to audit")
	flag.Parse()

	log := logger.New(cfg.LogLevel)

	if err := run(cfg, *group); err != nil {
		log.Error("dupescan failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, group string) error {
	ctx := context.Background()

	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("FACESIGN_POSTGRES_DSN is required")
	}
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	store := ledger.NewPostgres(db)
	provider := facetec.New(cfg.Provider.BaseURL)

	members, err := store.ListMembers(ctx, group)
	if err != nil {
		return err
	}
	fmt.Printf("auditing %d members of group %q\n", len(members), group)

	problematic := make(map[string]bool)
	for i, member := range members {
		if i > 0 && i%100 == 0 {
			fmt.Printf("processed %d members...\n", i)
		}

		searchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		candidates, err := provider.Search(searchCtx, member, group, cfg.Provider.MinMatchScore)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed for %s: %v\n", member, err)
			continue
		}

		if len(candidates) > 1 {
			for _, candidate := range candidates {
				problematic[candidate.Identifier] = true
			}
		}
	}

	ids := make([]string, 0, len(problematic))
	for id := range problematic {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("audit complete: %d problematic identifiers found\n", len(ids))
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
