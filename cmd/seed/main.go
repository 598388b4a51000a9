// Command seed fills the transaction store with a year of simulated
// history built around the user's real monthly averages, so the dashboard
// and forecast have something sensible to chew on.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/config"
	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/logger"
	"github.com/ckaratas/cebibak/internal/store"
	"github.com/ckaratas/cebibak/internal/store/memory"
)

func main() {
	var (
		salary    = flag.Float64("salary", 17000, "average monthly income")
		rent      = flag.Float64("rent", 8000, "monthly rent")
		groceries = flag.Float64("groceries", 4000, "average monthly groceries")
		transport = flag.Float64("transport", 1200, "average monthly transport")
		bills     = flag.Float64("bills", 1500, "average monthly bills")
		fun       = flag.Float64("fun", 2000, "average monthly entertainment")
		days      = flag.Int("days", 365, "number of days of history to generate")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	log := logger.New("seed")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	var st store.TransactionStore
	if cfg.StoreBackend == "memory" {
		log.Warn().Msg("Memory backend selected - seeded data exists only for this run")
		st = memory.NewStore()
	} else {
		fs, err := store.NewFirestoreStore(ctx, cfg.GCPProjectID, cfg.Collection)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open Firestore")
		}
		defer fs.Close()
		st = fs
	}

	rng := rand.New(rand.NewSource(*seed))
	start := time.Now().AddDate(0, 0, -*days)
	written := 0

	log.Info().Int("days", *days).Msg("Simulating transaction history")

	for i := 0; i < *days; i++ {
		day := start.AddDate(0, 0, i)

		// Salary lands on the 15th of every month.
		if day.Day() == 15 {
			written += write(ctx, st, log, &domain.Record{
				Type:        string(domain.KindIncome),
				Amount:      *salary,
				Source:      "Salary",
				Description: "Monthly salary",
				Date:        day,
				IsRecurring: true,
			})
		}

		// Rent on the 1st, bills on the 10th.
		if day.Day() == 1 {
			written += write(ctx, st, log, &domain.Record{
				Type:        string(domain.KindExpense),
				Amount:      *rent,
				Category:    "Rent",
				Description: "Monthly rent",
				Date:        day,
				IsMandatory: true,
			})
		}
		if day.Day() == 10 {
			written += write(ctx, st, log, &domain.Record{
				Type:        string(domain.KindExpense),
				Amount:      *bills,
				Category:    "Bills",
				Description: "Utilities",
				Date:        day,
				IsMandatory: true,
			})
		}

		// Variable spending: spread each monthly average over random days
		// with some jitter, keeping the total close to the stated average.
		if rng.Float64() < 8.0/30 {
			written += write(ctx, st, log, &domain.Record{
				Type:     string(domain.KindExpense),
				Amount:   round2((*groceries / 8) * uniform(rng, 0.8, 1.2)),
				Category: "Market",
				Date:     day,
			})
		}
		if rng.Float64() < 20.0/30 {
			written += write(ctx, st, log, &domain.Record{
				Type:     string(domain.KindExpense),
				Amount:   round2((*transport / 20) * uniform(rng, 0.9, 1.1)),
				Category: "Transport",
				Date:     day,
			})
		}
		if rng.Float64() < 6.0/30 {
			written += write(ctx, st, log, &domain.Record{
				Type:     string(domain.KindExpense),
				Amount:   round2((*fun / 6) * uniform(rng, 0.7, 1.5)),
				Category: "Entertainment",
				Date:     day,
			})
		}
	}

	log.Info().Int("written", written).Msg("Seeding complete")
}

// write saves one record and returns 1 on success so the caller can keep a
// running count. Individual failures are logged and skipped.
func write(ctx context.Context, st store.TransactionStore, log zerolog.Logger, rec *domain.Record) int {
	if _, err := st.Add(ctx, rec); err != nil {
		log.Error().Err(err).Str("category", rec.Category).Msg("Failed to write record")
		return 0
	}
	return 1
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
