// backfill-finance regenerates the auto revenue ledger line for payments that
// lost theirs (imports, older data, interrupted writes). A payment is covered
// when at least one auto or suppressed line points back at it; suppressed lines
// count as coverage because the reversal was deliberate.
//
// Usage:
//   go run ./cmd/backfill-finance [--academy-id <uuid>] [--dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

func main() {
	academyID := flag.String("academy-id", "", "Optional: backfill only one academy (uuid string). If empty, backfills all academies.")
	dryRun := flag.Bool("dry-run", false, "If true, do not write; only print the payments that would get a line")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "BackfillFinance")
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var academies []models.Academy
	query := db.WithContext(ctx).Model(&models.Academy{})
	if strings.TrimSpace(*academyID) != "" {
		query = query.Where("id = ?", strings.TrimSpace(*academyID))
	}
	if err := query.Find(&academies).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list academies: %v\n", err)
		os.Exit(1)
	}
	if len(academies) == 0 {
		fmt.Fprintln(os.Stderr, "no academies found to backfill")
		return
	}

	if *dryRun {
		fmt.Println("[dry-run] no changes will be written")
	}

	totalCreated := 0
	for _, academy := range academies {
		aid := academy.ID.String()
		academyCtx := utils.SetAcademyIdInContext(ctx, aid)
		created, err := models.BackfillAutoFinanceLines(academyCtx, aid, *dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "academy %s: %v\n", aid, err)
			os.Exit(1)
		}
		fmt.Printf("academy %s: %d payment(s) without a ledger line\n", aid, created)
		totalCreated += created
	}
	fmt.Printf("done: %d line(s) %s\n", totalCreated, map[bool]string{true: "would be created", false: "created"}[*dryRun])
}
