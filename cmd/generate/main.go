package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"strings"
	"time"

	"chronle/adapters/excel"
	"chronle/adapters/llm"
	"chronle/adapters/postgres"
	"chronle/ai"
	"chronle/app"
	"chronle/internal/config"
	"chronle/internal/coverage"
	"chronle/internal/migration"
	"chronle/internal/usage"
	"chronle/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const composeCandidateYears = 9

func main() {
	var (
		yearsFlag   = flag.String("years", "", "comma-separated target years; empty plans from coverage gaps")
		countFlag   = flag.Int("count", 9, "number of years to plan when -years is empty")
		workersFlag = flag.Int("workers", 3, "concurrent generation workers")
		composeFlag = flag.String("compose", "", "publish the puzzle for this YYYY-MM-DD day after generating")
		reportFlag  = flag.String("report", "", "write the coverage/spend workbook to this path")
		noJudgeFlag = flag.Bool("no-judge", false, "skip the LLM judge pass when composing")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	events := postgres.NewEventPoolRepository(db)
	puzzles := postgres.NewPuzzleRepository(db)
	usageService := usage.NewService(postgres.NewLLMUsageRepository(db))

	llmClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.AI.OpenAIKey,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	clientConfig := ai.DefaultConfig(cfg.AI.Model, cfg.AI.FallbackModel)
	clientConfig.MaxAttempts = cfg.AI.MaxAttempts
	clientConfig.BackoffBase = cfg.AI.BackoffBase
	clientConfig.MaxTokens = cfg.AI.MaxTokens

	prompts := ai.NewPromptManager(cfg.AI.PromptsDir)
	generator := app.NewGenerationService(
		ai.NewStructuredClient[ai.EventBatch](llmClient, clientConfig),
		prompts, events, usageService,
		app.GenerationConfig{
			MinEventsPerCall: cfg.Generation.MinEventsPerCall,
			MaxEventsPerCall: cfg.Generation.MaxEventsPerCall,
			MaxWordsPerClue:  cfg.Generation.MaxWordsPerClue,
		},
	)
	runner := app.NewBatchRunner(generator, events, *workersFlag)

	years, err := resolveYears(ctx, runner, *yearsFlag, *countFlag)
	if err != nil {
		log.Fatalf("Failed to resolve target years: %v", err)
	}

	if len(years) > 0 {
		log.Printf("Generating events for years %v", years)
		result := runner.Run(ctx, years)
		for year, err := range result.Failed {
			log.Printf("Year %d failed: %v", year, err)
		}
	} else {
		log.Printf("No coverage gaps to fill")
	}

	if *composeFlag != "" {
		if _, err := time.Parse("2006-01-02", *composeFlag); err != nil {
			log.Fatalf("-compose must be YYYY-MM-DD: %v", err)
		}
		var judge *ai.StructuredClient[ai.JudgeVerdict]
		if !*noJudgeFlag {
			judge = ai.NewStructuredClient[ai.JudgeVerdict](llmClient, clientConfig)
		}
		curator := app.NewCurator(judge, prompts, events, puzzles, usageService)

		composeYears, err := pickComposeYears(ctx, events)
		if err != nil {
			log.Fatalf("Failed to pick puzzle years: %v", err)
		}
		p, err := curator.ComposePuzzle(ctx, *composeFlag, composeYears)
		if err != nil {
			log.Fatalf("Failed to compose puzzle: %v", err)
		}
		log.Printf("Published puzzle %s for %s", p.ID, p.Day)
	}

	if *reportFlag != "" {
		if err := writeReport(ctx, *reportFlag, events, usageService); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Wrote report to %s", *reportFlag)
	}
}

// resolveYears parses -years, or plans a batch from coverage gaps.
func resolveYears(ctx context.Context, runner *app.BatchRunner, yearsFlag string, count int) ([]int, error) {
	if yearsFlag == "" {
		return runner.PlanYears(ctx, count)
	}
	parts := strings.Split(yearsFlag, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}

// pickComposeYears spreads puzzle years across eras from available stock,
// round-robin over the era buckets so no span dominates the puzzle.
func pickComposeYears(ctx context.Context, events ports.EventRepository) ([]int, error) {
	stats, err := events.GetYearStats(ctx)
	if err != nil {
		return nil, err
	}

	byEra := make(map[coverage.Era][]int)
	for _, stat := range stats {
		if stat.Available == 0 {
			continue
		}
		era := coverage.GetEraBucket(stat.Year)
		byEra[era] = append(byEra[era], stat.Year)
	}

	eras := []coverage.Era{coverage.EraAncient, coverage.EraMedieval, coverage.EraModern}
	years := make([]int, 0, composeCandidateYears)
	for len(years) < composeCandidateYears {
		picked := false
		for _, era := range eras {
			pool := byEra[era]
			if len(pool) == 0 {
				continue
			}
			years = append(years, pool[0])
			byEra[era] = pool[1:]
			picked = true
			if len(years) == composeCandidateYears {
				break
			}
		}
		if !picked {
			break
		}
	}
	return years, nil
}

func writeReport(ctx context.Context, path string, events ports.EventRepository, usageService *usage.Service) error {
	stats, err := events.GetYearStats(ctx)
	if err != nil {
		return err
	}
	report := coverage.BuildReport(stats)

	end := time.Now()
	summary, err := usageService.GetUsageSummary(ctx, end.AddDate(0, 0, -30), end)
	if err != nil {
		log.Printf("Usage summary unavailable, writing coverage only: %v", err)
		summary = nil
	}

	return excel.NewReportWriter().WriteReport(path, stats, report, summary)
}
