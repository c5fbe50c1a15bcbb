package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/config"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/events"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/mapgen"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/match"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/monitoring"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/scenario"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/search"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (empty to use config, then a random map)")
	depth := flag.Int("depth", -1, "Search depth in plies (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	selfPlay := flag.Bool("selfplay", false, "Play both sides until the skirmish is decided")
	matches := flag.Int("matches", 1, "Number of self-play matches; the config is re-read between matches")
	maxTurns := flag.Int("max-turns", -1, "Self-play decision limit (-1 to use config default)")
	seed := flag.Int64("random-seed", -1, "Seed for the random map (-1 for time based)")
	verify := flag.Bool("verify", false, "Check the decision against an unpruned minimax search")
	watch := flag.Bool("watch", false, "Hot-reload the config file between self-play matches")
	color := flag.Bool("color", true, "Render the board with ANSI colors")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *depth != -1 {
		config.Set("search.depth", *depth)
	}
	if *maxTurns != -1 {
		config.Set("match.max_turns", *maxTurns)
	}
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	if *scenarioPath == "" {
		*scenarioPath = cfg.Match.Scenario
	}
	if *seed == -1 {
		*seed = time.Now().UnixNano()
	}
	if err := config.Validate(config.Get()); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration after flag overrides")
	}

	setupLogging(*logLevel, cfg.Logging.Format)

	if *watch && config.ConfigFilePath() != "" {
		config.WatchConfig(func(c *config.Config) {
			log.Info().
				Int("depth", c.Search.Depth).
				Str("evaluation", c.Evaluation.Mode).
				Msg("Configuration reloaded")
		}, func(err error) {
			log.Warn().Err(err).Msg("Ignoring invalid configuration change")
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, source, err := loadState(*scenarioPath, *seed, config.Get().MapGen)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scenario")
	}
	log.Info().
		Str("source", source).
		Int("width", state.Width()).
		Int("height", state.Height()).
		Msg("Scenario loaded")
	fmt.Printf("Initial board (%s):\n%s\n", source, state.Render(*color))

	if !*selfPlay {
		if err := decide(ctx, state, *verify); err != nil {
			log.Fatal().Err(err).Msg("Decision failed")
		}
		return
	}

	for i := 0; i < *matches; i++ {
		if err := playMatch(ctx, state, *color); err != nil {
			log.Fatal().Err(err).Int("match", i+1).Msg("Self-play failed")
		}
	}
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Check if we're in production
	if os.Getenv("APP_ENV") == "production" || format == "json" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}

// loadState picks the scenario file when one is given and a seeded random map otherwise
func loadState(path string, seed int64, mc config.MapGenConfig) (*game.State, string, error) {
	if path != "" {
		f, err := scenario.Load(path)
		if err != nil {
			return nil, "", err
		}
		s, err := f.State()
		if err != nil {
			return nil, "", fmt.Errorf("scenario %s: %w", path, err)
		}
		return s, path, nil
	}

	mapCfg := mapgen.DefaultMapConfig(mc.Width, mc.Height)
	mapCfg.ControlledUnits = mc.ControlledUnits
	mapCfg.HostileUnits = mc.HostileUnits
	mapCfg.ObstacleRatio = mc.ObstacleRatio
	mapCfg.MinSideSpacing = mc.MinSideSpacing

	s, err := mapgen.NewGenerator(mapCfg, rand.New(rand.NewSource(seed))).Generate()
	if err != nil {
		return nil, "", fmt.Errorf("map generation failed: %w", err)
	}
	return s, fmt.Sprintf("random seed %d", seed), nil
}

func buildEvaluator(ec config.EvaluationConfig) (search.Evaluator, error) {
	if ec.Mode == config.EvalExpr {
		return search.NewExprEvaluator(ec.Expression)
	}
	return search.NewLinearEvaluator(search.Weights{
		AliveAlly:        ec.Weights.AliveAlly,
		AliveEnemy:       ec.Weights.AliveEnemy,
		DamageDealt:      ec.Weights.DamageDealt,
		AllyHP:           ec.Weights.AllyHP,
		Attackable:       ec.Weights.Attackable,
		Distance:         ec.Weights.Distance,
		AdjacentObstacle: ec.Weights.AdjacentObstacle,
	})
}

func buildEngine(cfg *config.Config) (*search.Engine, error) {
	eval, err := buildEvaluator(cfg.Evaluation)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	orderer, err := search.OrdererByName(cfg.Search.MoveOrdering)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(search.Options{
		Depth:        cfg.Search.Depth,
		Diagonal:     cfg.Search.DiagonalMoves,
		Evaluator:    eval,
		Orderer:      orderer,
		ParallelRoot: cfg.Search.ParallelRoot,
		TimeBudget:   cfg.Search.TimeBudget(),
	}, log.Logger)
}

// decide runs one search for the side to move and prints the chosen joint action
func decide(ctx context.Context, state *game.State, verify bool) error {
	engine, err := buildEngine(config.Get())
	if err != nil {
		return err
	}

	res, err := engine.Search(ctx, state)
	if err != nil {
		return err
	}

	fmt.Printf("Side to move: %s\n", state.ToMove)
	fmt.Printf("Decision: %s (value %g, child %d)\n", res.Action, res.Value, res.ChildIndex)
	fmt.Printf("Searched %d nodes, %d cutoffs in %s\n", res.Stats.Nodes, res.Stats.Cutoffs, res.Stats.Elapsed)

	if !verify {
		return nil
	}
	if res.Truncated {
		log.Warn().Msg("Search was truncated by the time budget; skipping verification")
		return nil
	}

	opts := engine.Options()
	start := time.Now()
	value, index := search.Minimax(state, opts.Depth, rules.NewActionGenerator(opts.Diagonal), opts.Evaluator, opts.Orderer)
	log.Info().
		Float64("minimax_value", value).
		Int("minimax_child", index).
		Dur("elapsed", time.Since(start)).
		Msg("Unpruned search complete")

	if !sameValue(value, res.Value) || index != res.ChildIndex {
		return fmt.Errorf("alpha-beta chose child %d (value %g) but minimax chose child %d (value %g)",
			res.ChildIndex, res.Value, index, value)
	}
	fmt.Println("Verified against unpruned minimax")
	return nil
}

func sameValue(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(a))
}

// playMatch runs one self-play match with an engine built from the current config
func playMatch(ctx context.Context, state *game.State, color bool) error {
	cfg := config.Get()
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(log.Logger)
	bus.Subscribe(subscribers.NewLoggerSubscriber("match-logger", log.Logger, zerolog.InfoLevel))

	monitor := monitoring.NewSearchMonitor("search-monitor", 10*time.Second, log.Logger)
	bus.Subscribe(monitor)
	monitor.Start()
	defer monitor.Stop()

	m, err := match.New(state, engine, match.Config{
		MaxTurns:        cfg.Match.MaxTurns,
		CheckInvariants: zerolog.GlobalLevel() <= zerolog.DebugLevel,
		EventBus:        bus,
		Logger:          log.Logger,
	})
	if err != nil {
		return err
	}

	summary, err := m.Run(ctx)
	for _, turn := range summary.Turns {
		fmt.Printf("Ply %d %s: %s (value %g)\n", turn.Ply, turn.Side, turn.Result.Action, turn.Result.Value)
	}
	fmt.Printf("\nFinal board:\n%s\n", m.State().Render(color))
	if err != nil {
		return err
	}

	if summary.TurnLimitReached {
		fmt.Printf("Match %s reached the turn limit (%d) undecided\n", summary.MatchID, cfg.Match.MaxTurns)
	} else {
		fmt.Printf("Match %s: %s after %d plies\n", summary.MatchID, summary.Outcome, summary.Plies)
	}
	return nil
}
