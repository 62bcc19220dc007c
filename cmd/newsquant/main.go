package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"newsquant/internal/adapters/ai"
	"newsquant/internal/adapters/config"
	"newsquant/internal/adapters/embeddings"
	"newsquant/internal/adapters/exchanges"
	"newsquant/internal/adapters/exchanges/binance"
	"newsquant/internal/adapters/postgres"
	"newsquant/internal/adapters/telegram"
	"newsquant/internal/agent"
	"newsquant/internal/collector"
	"newsquant/internal/domain/news"
	"newsquant/internal/portfolio"
	"newsquant/internal/report"
	pgrepo "newsquant/internal/repository/postgres"
	"newsquant/internal/tools"
	"newsquant/internal/trading"
	"newsquant/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	root := &cobra.Command{
		Use:           "newsquant",
		Short:         "News-aware crypto paper-trading assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newChatCmd(cfg),
		newRunCmd(cfg),
		newPnlCmd(cfg),
		newIngestCmd(cfg),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Get().Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

// app holds the wired components a command needs. Each command builds only
// what it uses; the database is dialed lazily because pnl does not need it.
type app struct {
	cfg    *config.Config
	market exchanges.MarketData
	store  *portfolio.Store
	pg     *postgres.Client
}

func newApp(cfg *config.Config) *app {
	return &app{
		cfg: cfg,
		market: binance.NewClient(binance.Config{
			BaseURL: cfg.Exchange.BaseURL,
			Timeout: cfg.Exchange.Timeout,
		}),
		store: portfolio.NewStore(cfg.Trading.PortfolioFile, cfg.Trading.InitialCash),
	}
}

func (a *app) close() {
	if a.pg != nil {
		a.pg.Close()
	}
}

func (a *app) newsService(ctx context.Context) (*news.Service, error) {
	pg, err := postgres.NewClient(a.cfg.Postgres)
	if err != nil {
		return nil, err
	}
	a.pg = pg

	embedder, err := embeddings.NewOpenAIProvider(
		a.cfg.OpenAI.APIKey,
		a.cfg.OpenAI.EmbeddingModel,
		a.cfg.OpenAI.Timeout,
	)
	if err != nil {
		return nil, err
	}

	repo := pgrepo.NewNewsRepository(pg.DB())
	if err := repo.EnsureSchema(ctx, embedder.Dimensions()); err != nil {
		return nil, err
	}

	return news.NewService(repo, embedder, a.cfg.News.MinSimilarity), nil
}

func (a *app) engine(ctx context.Context) (*agent.Engine, error) {
	newsService, err := a.newsService(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewOpenAIProvider(
		a.cfg.OpenAI.APIKey,
		a.cfg.OpenAI.ChatModel,
		a.cfg.OpenAI.RequestsPerMinute,
		a.cfg.OpenAI.Timeout,
	)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	registry.Register(tools.NewSearchMarketNews(newsService, a.cfg.News.TopK))
	registry.Register(tools.NewGetMarketQuote(a.market))
	registry.Register(tools.NewGetMarketCandles(a.market))

	return agent.NewEngine(provider, registry, tools.NewDispatcher(registry), a.store), nil
}

func (a *app) notifier() trading.Notifier {
	if a.cfg.Telegram.BotToken == "" {
		return nil
	}
	n, err := telegram.NewNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
	if err != nil {
		logger.Get().Warnw("telegram notifier disabled", "error", err)
		return nil
	}
	return n
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive market analyst grounded in the news base",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg)
			defer a.close()

			engine, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Ask about the market (q to quit):")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				query := strings.TrimSpace(scanner.Text())
				switch query {
				case "":
					continue
				case "q", "quit", "exit":
					return nil
				}

				answer, err := engine.Report(cmd.Context(), query)
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				fmt.Println(answer)
			}
		},
	}
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	var symbols []string

	cmd := &cobra.Command{
		Use:   "run [symbols...]",
		Short: "Run one decision-and-execution cycle per symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg)
			defer a.close()

			engine, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) > 0 {
				symbols = append(symbols, args...)
			}
			if len(symbols) == 0 {
				symbols = cfg.Trading.Symbols
			}

			notifier := a.notifier()
			executor := trading.NewExecutor(a.store, a.market, notifier)
			runner := trading.NewRunner(engine, executor, notifier, symbols)

			outcomes := runner.Run(cmd.Context())
			for _, o := range outcomes {
				if o.Err != nil {
					fmt.Printf("%s: failed: %v\n", o.Symbol, o.Err)
					continue
				}
				fmt.Println(o.Result.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&symbols, "symbol", nil, "trading pair(s) to evaluate, defaults to the configured list")

	return cmd
}

func newPnlCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "pnl",
		Short: "Print the portfolio valuation and profit against the starting cash",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg)
			defer a.close()

			v, err := report.NewBuilder(a.store, a.market).Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(v.Render())
			return nil
		},
	}
}

func newIngestCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the latest crypto headlines into the news base",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cfg)
			defer a.close()

			newsService, err := a.newsService(cmd.Context())
			if err != nil {
				return err
			}

			c := collector.New(newsService, collector.Config{Limit: limit})
			inserted, err := c.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("stored %d new items\n", inserted)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", cfg.News.FetchLimit, "maximum number of articles to fetch")

	return cmd
}
