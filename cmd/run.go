package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/guildkeeper/guildkeeper/internal/auth"
	"github.com/guildkeeper/guildkeeper/internal/bot"
	"github.com/guildkeeper/guildkeeper/internal/cogs/autoreply"
	"github.com/guildkeeper/guildkeeper/internal/cogs/customcmd"
	"github.com/guildkeeper/guildkeeper/internal/cogs/daily"
	"github.com/guildkeeper/guildkeeper/internal/cogs/leveling"
	"github.com/guildkeeper/guildkeeper/internal/cogs/moderation"
	"github.com/guildkeeper/guildkeeper/internal/cogs/reactroles"
	"github.com/guildkeeper/guildkeeper/internal/cogs/security"
	"github.com/guildkeeper/guildkeeper/internal/cogs/stats"
	"github.com/guildkeeper/guildkeeper/internal/cogs/tickets"
	"github.com/guildkeeper/guildkeeper/internal/cogs/welcome"
	"github.com/guildkeeper/guildkeeper/internal/config"
	"github.com/guildkeeper/guildkeeper/internal/dashboard"
	"github.com/guildkeeper/guildkeeper/internal/dispatch"
	"github.com/guildkeeper/guildkeeper/internal/faq"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"github.com/guildkeeper/guildkeeper/internal/platform"
	"github.com/guildkeeper/guildkeeper/internal/server"
	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot and the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() error {
	logging.Setup(verbosity)
	log := logging.GetLogger("main")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	db, err := statsdb.Open(filepath.Join(cfg.DataDir, "stats.db"))
	if err != nil {
		return fmt.Errorf("opening statistics database: %w", err)
	}
	defer db.Close()

	discord, err := platform.NewDiscord(cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("creating discord client: %w", err)
	}

	dispatcher := dispatch.New(discord)
	hub := bot.NewHub()

	cogs := []bot.Cog{
		autoreply.New(st, dispatcher, hub),
		security.New(st, dispatcher, db, hub),
		leveling.New(st, discord),
		daily.New(st),
		welcome.New(st, discord),
		customcmd.New(st, discord, cfg.Discord.CommandPrefix),
		moderation.New(discord, db),
		reactroles.New(st, discord),
		tickets.New(st, discord, filepath.Join(cfg.DataDir, "transcripts")),
		stats.New(db),
	}

	var faqCog *faq.Cog
	if cfg.FAQ.Enabled {
		apiKey := config.OpenAIKey()
		if apiKey == "" {
			log.Warn().Msg("faq enabled but OPENAI_API_KEY is not set, skipping")
		} else {
			embedder := faq.NewOpenAIEmbedder(apiKey, cfg.FAQ.EmbeddingModel)
			faqCog = faq.New(st, discord, faq.NewIndex(embedder), cfg.FAQ.Threshold)
			cogs = append(cogs, faqCog)
		}
	}

	runner := bot.NewRunner(hub, cogs...)

	if err := discord.Start(runner.Handlers(), runner.Commands()); err != nil {
		return fmt.Errorf("starting discord session: %w", err)
	}
	defer discord.Close()
	log.Info().Msg("bot connected")

	if faqCog != nil {
		guilds, err := st.Guilds()
		if err != nil {
			log.Warn().Err(err).Msg("listing guilds for faq index")
		}
		for _, guildID := range guilds {
			if err := faqCog.LoadGuild(context.Background(), guildID); err != nil {
				log.Warn().Err(err).Str("guild", guildID).Msg("rebuilding faq index")
			}
		}
	}

	var srv *server.Server
	if cfg.Dashboard.Enabled {
		sessions := auth.NewSessions(time.Duration(cfg.Dashboard.SessionTTLMins) * time.Minute)
		oauthConf := auth.OAuthConfig(cfg.Discord.ClientID, cfg.Discord.ClientSecret, cfg.Discord.RedirectURL)
		dash := dashboard.New(discord, hub)

		srv = server.New(server.Config{
			Host:     cfg.Dashboard.Host,
			Port:     cfg.Dashboard.Port,
			AllowAll: cfg.Dashboard.AllowAll,
		}, oauthConf, sessions, func(r chi.Router) {
			dash.RegisterRoutes(r)
			autoreply.RegisterRoutes(r, st)
			security.RegisterRoutes(r, st, db)
			stats.RegisterRoutes(r, db)
		})

		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("dashboard server failed")
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("dashboard shutdown")
		}
	}
	return nil
}
