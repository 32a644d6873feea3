package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mcdev12/reckoning/go/internal/dbconfig"
	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// SnapshotRecord is one exported device record: the local record fields plus its owner
type SnapshotRecord struct {
	Identity string          `json:"identity"`
	Record   json.RawMessage `json:"record"`
}

type options struct {
	dryRun bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "seed_progress [snapshot.json]",
		Short: "Import exported device records into the remote progress store",
		Long: `Import exported device records into the remote progress store.

Records that already exist remotely are left untouched. With --dry-run the
snapshot is only decoded and validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "go/internal/assets/progress.json"
			if len(args) == 1 {
				path = args[0]
			}
			return seed(cmd, opts, path)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "decode the snapshot without writing")

	return cmd
}

func seed(cmd *cobra.Command, opts *options, path string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON: %w", err)
	}
	var records []SnapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}

	// 2) Decode every record up front
	var (
		total  = len(records)
		errs   int
		states = make(map[models.Identity]models.ProgressState, total)
		order  []models.Identity
	)
	for _, r := range records {
		if r.Identity == "" {
			fmt.Fprintln(errOut, "skipping record without identity")
			errs++
			continue
		}
		state, err := progress.DecodeLocalRecord(r.Record)
		if err != nil {
			fmt.Fprintf(errOut, "decoding record %s: %v\n", r.Identity, err)
			errs++
			continue
		}
		id := models.Identity(r.Identity)
		if prev, ok := states[id]; ok {
			// duplicates in one snapshot are joined, not dropped
			state = progress.Merge(prev, state)
		} else {
			order = append(order, id)
		}
		states[id] = state
	}

	if opts.dryRun {
		fmt.Fprintf(out, "Progress seed dry run: %d total, %d identities, %d errors\n", total, len(order), errs)
		return nil
	}

	// 3) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	if err := remotestore.NewStore(pool, nil).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 4) Insert and count; existing records are never overwritten
	var inserted, skipped int
	for _, id := range order {
		state := states[id]
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO progress_records (identity, user_name, xp, streak, completed)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (identity) DO NOTHING
        `,
			id.String(), state.UserName, state.Score, state.StreakLength, state.CompletedItems,
		)
		if err != nil {
			fmt.Fprintf(errOut, "error inserting record %s: %v\n", id, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 5) Print summary
	fmt.Fprintf(out,
		"Progress seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
