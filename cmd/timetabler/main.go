// Command timetabler is the cobra-driven CLI surface over the
// scheduling core, generalizing the teacher's cli.go command tree
// (cmdGen, cmdSwap, cmdScore, cmdByCourse, cmdByInstructor) into the
// catalog/teacher-assignment/conflict/GA vocabulary.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/russross/timetabler/internal/apperr"
	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/config"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/ga"
	"github.com/russross/timetabler/internal/logging"
	"github.com/russross/timetabler/internal/metrics"
	"github.com/russross/timetabler/internal/report"
	"github.com/russross/timetabler/internal/teacherassign"
)

// app bundles the dependencies every subcommand needs, built once in
// PersistentPreRunE and torn down in PersistentPostRun.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	store   *catalog.Store
	redis   *redis.Client
	seed    int64
	metrics *http.Server
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:   "timetabler",
		Short: "University course timetable generator",
		Long: "A tool to populate and optimize university course timetables,\n" +
			"balancing curriculum conflicts, teacher preferences, and room\n" +
			"capacity.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.AddCommand(
		a.cmdResetTeacherAssignments(),
		a.cmdAssignTeachersToClasses(),
		a.cmdViewClassConflicts(),
		a.cmdResetSchedule(),
		a.cmdSchedule(),
		a.cmdViewSchedule(),
	)

	if err := root.Execute(); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			log.Printf("%s: %v", appErr.Code, appErr)
		} else {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.logger = logger

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := catalog.Migrate(sqlDB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	a.db = sqlx.NewDb(sqlDB, "postgres")
	a.store = catalog.NewStore(a.db)

	a.redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	a.seed = time.Now().UnixNano()

	a.metrics = &http.Server{Addr: ":9090", Handler: metrics.Handler()}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (a *app) teardown() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) analyzer() *conflict.Analyzer {
	cache := conflict.NewRedisCache(a.redis, a.cfg.Redis.TTL, a.logger)
	analyzer := conflict.NewAnalyzer(cache)
	analyzer.OnHit = metrics.RecordCacheHit
	analyzer.OnMiss = metrics.RecordCacheMiss
	return analyzer
}

func (a *app) loadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetCatalogClassesTotal(len(snap.Classes))
	return snap, nil
}

func (a *app) cmdResetTeacherAssignments() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-teacher-assignments",
		Short: "clear every class's teacher assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			assignments := make([]catalog.TeacherAssignment, len(snap.Classes))
			for i, c := range snap.Classes {
				assignments[i] = catalog.TeacherAssignment{ClassID: c.ID, TeacherID: 0}
			}
			if err := a.store.PersistTeachers(ctx, assignments); err != nil {
				return err
			}
			a.logger.Info("teacher assignments reset", zap.Int("classes", len(snap.Classes)))
			return nil
		},
	}
}

func (a *app) cmdAssignTeachersToClasses() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-teachers-to-classes",
		Short: "run the load-balanced greedy teacher allocator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(a.seed))
			teacherassign.Assign(snap, rng)

			assignments := make([]catalog.TeacherAssignment, len(snap.Classes))
			for i, c := range snap.Classes {
				assignments[i] = catalog.TeacherAssignment{ClassID: c.ID, TeacherID: c.TeacherID}
			}
			if err := a.store.PersistTeachers(ctx, assignments); err != nil {
				return err
			}
			a.logger.Info("teachers assigned", zap.Int("classes", len(snap.Classes)))
			return nil
		},
	}
}

func (a *app) cmdViewClassConflicts() *cobra.Command {
	return &cobra.Command{
		Use:   "view-class-conflicts",
		Short: "print the curriculum conflict graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			result, err := a.analyzer().Build(ctx, snap)
			if err != nil {
				return err
			}
			report.RenderConflicts(os.Stdout, snap, result)
			return nil
		},
	}
}

func (a *app) cmdResetSchedule() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-schedule",
		Short: "clear every class's teacher, room, and time placement",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.store.ResetSchedule(ctx); err != nil {
				return err
			}
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			a.analyzer().Invalidate(ctx, snap)
			a.logger.Info("schedule reset")
			return nil
		},
	}
}

func (a *app) cmdSchedule() *cobra.Command {
	var flagPopulationSize, flagGenerations int
	var flagMutationChance float64
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "run the genetic search to place every class",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			analyzer := a.analyzer()
			conflicts, err := analyzer.Build(ctx, snap)
			if err != nil {
				return err
			}

			params := ga.DefaultParams()
			params.PopulationSize = a.cfg.GA.PopulationSize
			params.Generations = a.cfg.GA.Generations
			params.MutationChance = a.cfg.GA.MutationChance
			params.Workers = a.cfg.GA.Workers
			if cmd.Flags().Changed("population-size") {
				params.PopulationSize = flagPopulationSize
			}
			if cmd.Flags().Changed("num-generations") {
				params.Generations = flagGenerations
			}
			if cmd.Flags().Changed("mutation-chance") {
				params.MutationChance = flagMutationChance
			}
			params.Seed = a.seed

			best, breakdown, err := ga.Run(ctx, snap, conflicts, params, a.logger, metrics.Recorder{})
			if err != nil {
				return err
			}

			placements := make([]catalog.Placement, 0, len(snap.Classes))
			for _, id := range best.PlacedClasses() {
				room, _ := best.ClassRoom(id)
				placements = append(placements, catalog.Placement{ClassID: id, RoomID: room, Slots: best.ClassSlots(id)})
			}
			if err := a.store.Persist(ctx, placements, snap.SlotIDByIndex()); err != nil {
				return err
			}
			analyzer.Invalidate(ctx, snap)

			a.logger.Info("schedule complete", zap.Int("final_cost", breakdown.Total))
			report.RenderSchedule(os.Stdout, snap, best, breakdown)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagPopulationSize, "population-size", 0, "number of candidate timetables per generation (default: GA_POPULATION_SIZE)")
	cmd.Flags().IntVar(&flagGenerations, "num-generations", 0, "number of generations to run (default: GA_GENERATIONS)")
	cmd.Flags().Float64Var(&flagMutationChance, "mutation-chance", 0, "probability an offspring is mutated (default: GA_MUTATION_CHANCE)")
	return cmd
}

func (a *app) cmdViewSchedule() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "view-schedule",
		Short: "print the currently persisted schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := a.loadSnapshot(ctx)
			if err != nil {
				return err
			}
			conflicts, err := a.analyzer().Build(ctx, snap)
			if err != nil {
				return err
			}
			tt, err := snapshotToTimetable(snap)
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(os.Stdout, snap, tt)
			}
			breakdown := costEvaluate(snap, conflicts, tt)
			report.RenderSchedule(os.Stdout, snap, tt, breakdown)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schedule as JSON instead of a grid")
	return cmd
}
