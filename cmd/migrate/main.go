// migrate runs the gorm AutoMigrate pass and exits. Use it when the API
// service starts with SKIP_MIGRATIONS=true and schema changes are applied as
// a separate deploy step.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "Migrate")
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)
	repaired, err := models.EnsureAcademyDefaults(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed academy defaults: %v\n", err)
		os.Exit(1)
	}
	if repaired > 0 {
		fmt.Printf("seeded defaults for %d academy(ies)\n", repaired)
	}
	fmt.Println("migrations complete")
}
