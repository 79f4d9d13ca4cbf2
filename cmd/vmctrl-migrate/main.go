// Command vmctrl-migrate is the C14 one-shot legacy import utility
// (SPEC_FULL.md §4.15): it reads a WHMCS-era export, one legacy server
// row per line, and inserts each into the relational schema the API
// server uses, skipping rows already imported.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cuemby/vmctrl/pkg/config"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
)

var (
	inputPath = flag.String("input", "", "Path to the legacy export (JSON lines)")
	configDir = flag.String("config-dir", "configs", "Directory holding base.yaml and the environment overlay")
	env       = flag.String("env", "local", "Environment overlay to load (local, production)")
	dryRun    = flag.Bool("dry-run", false, "Read and decode the export but roll back every write")
)

// legacyRow mirrors the WHMCS export's JSON shape (SPEC_FULL.md §3
// supplement).
type legacyRow struct {
	WHMCSServiceID int64   `json:"whmcs_service_id"`
	HostName       string  `json:"host_name"`
	Status         string  `json:"status"`
	VMID           *int64  `json:"vm_id"`
	NodeName       *string `json:"node_name"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags)

	if *inputPath == "" {
		log.Fatal("--input is required")
	}

	log.Println("vmctrl legacy import")
	log.Printf("input: %s", *inputPath)
	log.Printf("dry-run: %v", *dryRun)

	cfg, err := config.Load(*configDir, *env)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := store.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{DSN: cfg.Database.DSN(), MaxConns: 4, MinConns: 1})
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	f, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("open export: %v", err)
	}
	defer f.Close()

	if err := run(ctx, st, f); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

func run(ctx context.Context, st *store.Store, f *os.File) error {
	tx, err := st.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var seen, inserted, skippedDuplicate, skippedInvalid int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		seen++

		var row legacyRow
		if err := json.Unmarshal(line, &row); err != nil {
			log.Printf("skipping invalid row %d: %v", seen, err)
			skippedInvalid++
			continue
		}
		if row.WHMCSServiceID == 0 || row.HostName == "" {
			log.Printf("skipping invalid row %d: missing whmcs_service_id or host_name", seen)
			skippedInvalid++
			continue
		}

		status := types.ParseServerStatus(row.Status)
		wasInserted, err := store.ImportLegacyServer(ctx, tx, store.LegacyServer{
			WHMCSServiceID: row.WHMCSServiceID,
			HostName:       row.HostName,
			Status:         string(status),
			VMID:           row.VMID,
			NodeName:       row.NodeName,
		})
		if err != nil {
			log.Printf("skipping row %d (whmcs id %d): %v", seen, row.WHMCSServiceID, err)
			skippedInvalid++
			continue
		}
		if wasInserted {
			inserted++
		} else {
			skippedDuplicate++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	if *dryRun {
		if err := tx.Rollback(ctx); err != nil {
			return fmt.Errorf("rollback dry run: %w", err)
		}
		log.Printf("[dry-run] seen=%d would-insert=%d would-skip-duplicate=%d would-skip-invalid=%d",
			seen, inserted, skippedDuplicate, skippedInvalid)
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("seen=%d inserted=%d skipped-duplicate=%d skipped-invalid=%d",
		seen, inserted, skippedDuplicate, skippedInvalid)
	return nil
}
