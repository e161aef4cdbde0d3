package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matchdayhq/matchday/internal/config"
	"github.com/matchdayhq/matchday/internal/domain/ballot"
	"github.com/matchdayhq/matchday/internal/domain/competition"
	"github.com/matchdayhq/matchday/internal/domain/match"
	"github.com/matchdayhq/matchday/internal/domain/playeraggregate"
	"github.com/matchdayhq/matchday/internal/domain/team"
	"github.com/matchdayhq/matchday/internal/domain/votingwindow"
	"github.com/matchdayhq/matchday/internal/infrastructure/account/clubauth"
	"github.com/matchdayhq/matchday/internal/infrastructure/notify"
	"github.com/matchdayhq/matchday/internal/infrastructure/repository/memory"
	"github.com/matchdayhq/matchday/internal/infrastructure/repository/postgres"
	"github.com/matchdayhq/matchday/internal/interfaces/httpapi"
	idgen "github.com/matchdayhq/matchday/internal/platform/id"
	"github.com/matchdayhq/matchday/internal/platform/logging"
	"github.com/matchdayhq/matchday/internal/usecase"
)

// App bundles the HTTP server and the background sweep loop.
type App struct {
	HTTPServer *http.Server

	windowSvc     *usecase.VotingWindowService
	sweepInterval time.Duration
	clock         clockwork.Clock
	logger        *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var notifier usecase.Notifier
	if cfg.WebhookEnabled {
		webhook, err := notify.NewWebhookNotifier(notify.WebhookNotifierConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Timeout: cfg.WebhookTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build webhook notifier: %w", err)
		}
		notifier = webhook
	} else {
		notifier = usecase.NewNoopNotifier()
	}

	statsSvc := usecase.NewStatsService(repos.matches, repos.windows, repos.ballots, repos.aggregates, logger)
	windowSvc := usecase.NewVotingWindowService(repos.windows, repos.ballots, repos.matches, statsSvc, notifier, logger)
	voteSvc := usecase.NewVoteService(repos.competitions, repos.matches, repos.windows, repos.ballots, idgen.NewRandomGenerator())
	matchSvc := usecase.NewMatchService(repos.competitions, repos.matches, windowSvc, statsSvc, idgen.NewRandomGenerator(), logger)
	standingsSvc := usecase.NewStandingsService(repos.competitions, repos.teams, repos.matches)

	authClient := clubauth.NewClient(
		&http.Client{Timeout: cfg.ClubAuthTimeout},
		cfg.ClubAuthBaseURL,
		cfg.ClubAuthIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(matchSvc, voteSvc, windowSvc, statsSvc, standingsSvc, repos.competitions, logger)
	router := httpapi.NewRouter(handler, authClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		HTTPServer:    server,
		windowSvc:     windowSvc,
		sweepInterval: cfg.SweepInterval,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
	}, nil
}

// RunSweeper closes overdue windows and sends reminders on a fixed cadence.
// It blocks until the context is cancelled.
func (a *App) RunSweeper(ctx context.Context) {
	ticker := a.clock.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	a.logger.Info("voting sweeper started", "interval", a.sweepInterval.String())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("voting sweeper stopped")
			return
		case <-ticker.Chan():
			result, err := a.windowSvc.Sweep(ctx)
			if err != nil {
				a.logger.WarnContext(ctx, "voting sweep failed", "error", err)
				continue
			}
			if result.ClosedCount > 0 || result.ReminderCount > 0 {
				a.logger.InfoContext(ctx, "voting sweep done",
					"closed", result.ClosedCount,
					"reminders", result.ReminderCount,
				)
			}
		}
	}
}

type repositories struct {
	competitions competition.Repository
	teams        team.Repository
	matches      match.Repository
	windows      votingwindow.Repository
	ballots      ballot.Repository
	aggregates   playeraggregate.Repository
}

// buildRepositories picks the storage backend: a configured DB_URL selects
// postgres, otherwise seeded in-memory repositories back a demo instance.
func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("DB_URL is empty, using in-memory repositories")
		windowRepo := memory.NewVotingWindowRepository()
		return repositories{
			competitions: memory.NewCompetitionRepository(memory.SeedCompetitions()),
			teams:        memory.NewTeamRepository(memory.SeedTeams()),
			matches:      memory.NewMatchRepository(memory.SeedMatches()),
			windows:      windowRepo,
			ballots:      memory.NewBallotRepository(windowRepo),
			aggregates:   memory.NewPlayerAggregateRepository(),
		}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		competitions: postgres.NewCompetitionRepository(db),
		teams:        postgres.NewTeamRepository(db),
		matches:      postgres.NewMatchRepository(db),
		windows:      postgres.NewVotingWindowRepository(db),
		ballots:      postgres.NewBallotRepository(db),
		aggregates:   postgres.NewPlayerAggregateRepository(db),
	}, nil
}
