package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/MarcGrol/shopperbot/lib/myconfig"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/mypublisher"
	"github.com/MarcGrol/shopperbot/lib/mystore"
	"github.com/MarcGrol/shopperbot/lib/mytime"
	"github.com/MarcGrol/shopperbot/lib/myuuid"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/cart"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/checkout"
	"github.com/MarcGrol/shopperbot/services/health"
	"github.com/MarcGrol/shopperbot/services/identity"
	"github.com/MarcGrol/shopperbot/services/inventory"
	"github.com/MarcGrol/shopperbot/services/router"
	"github.com/MarcGrol/shopperbot/services/session"
	"github.com/MarcGrol/shopperbot/services/telegram"
)

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := myconfig.New("")
	envFile := ".env"

	root := &cobra.Command{
		Use:          "shopperbot",
		Short:        "Telegram shopping assistant in front of the shop backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			err := myconfig.LoadEnvFile(envFile)
			if err != nil {
				return err
			}
			mylog.Configure(v.GetString(myconfig.KeyLogFormat))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "dotenv file with settings")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")
	_ = v.BindPFlag(myconfig.KeyLogFormat, root.PersistentFlags().Lookup("log-format"))

	run := newRunCommand(v)
	root.AddCommand(run, newDiagnoseCommand(v))
	// running without subcommand starts the bot
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	return root
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll telegram and serve the health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := myconfig.Load(v, true)
			if err != nil {
				return err
			}
			c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(c, cfg)
		},
	}
	cmd.Flags().String("port", "8080", "port of the health endpoint")
	cmd.Flags().String("api-base", "", "public backend base url")
	cmd.Flags().String("backend-local-url", "", "co-located backend base url")
	cmd.Flags().Bool("confirm-dedup", false, "answer repeated payment confirmations without a new order")
	_ = v.BindPFlag(myconfig.KeyPort, cmd.Flags().Lookup("port"))
	_ = v.BindPFlag(myconfig.KeyPublicBackendURL, cmd.Flags().Lookup("api-base"))
	_ = v.BindPFlag(myconfig.KeyLocalBackendURL, cmd.Flags().Lookup("backend-local-url"))
	_ = v.BindPFlag(myconfig.KeyConfirmDedup, cmd.Flags().Lookup("confirm-dedup"))

	return cmd
}

func runBot(c context.Context, cfg myconfig.Config) error {
	logger := mylog.New("main")
	nower := mytime.RealNower{}

	api, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		logger.Log(c, "", mylog.SeverityError, "Error starting bot: %s", err)
		return err
	}

	sessionStore, cleanup, err := mystore.NewInMemoryStore[session.Session](c)
	if err != nil {
		return fmt.Errorf("error creating session store: %w", err)
	}
	defer cleanup()

	references, cleanup, err := mystore.New[checkout.PaymentReference](c)
	if err != nil {
		return fmt.Errorf("error creating reference store: %w", err)
	}
	defer cleanup()

	publisher, cleanup, err := mypublisher.New(c, nower)
	if err != nil {
		return fmt.Errorf("error creating publisher: %w", err)
	}
	defer cleanup()

	client := backend.NewClient(backend.NewGateway(cfg.LocalBackendURL, cfg.PublicBackendURL, cfg.LocalTimeout, cfg.PublicTimeout))
	sessions := session.NewStore(sessionStore, nower)
	links := chat.NewWebLinks(cfg.WebAppURL)

	bot := telegram.NewBot(api, telegram.NewDispatcher(0, mylog.New("dispatcher")), myuuid.RealUUIDer{}, mylog.New("telegram"))
	services := router.Services{
		Identity: identity.NewService(client, sessions, links, mylog.New("identity")),
		Cart:     cart.NewService(client, sessions, mylog.New("cart")),
		Checkout: checkout.NewService(client, sessions, references, publisher, nower, links, checkout.Config{
			ReferencePrefix: cfg.PaymentRefPrefix,
			ConfirmDedup:    cfg.ConfirmDedup,
			Bank: checkout.BankDetails{
				BankName:      cfg.BankName,
				AccountNumber: cfg.BankAccountNumber,
				AccountName:   cfg.BankAccountName,
			},
		}, mylog.New("checkout")),
		Inventory: inventory.NewService(client, bot, mylog.New("inventory")),
	}
	bot.SetHandler(router.New(client, sessions, services, links, cfg.SuperAdminUsername, mylog.New("router")))

	httpRouter := mux.NewRouter()
	health.NewService(nower).RegisterEndpoints(c, httpRouter)

	logger.Log(c, "", mylog.SeverityInfo, "Starting health endpoint on port %s, backend %s (local %s)", cfg.Port, cfg.PublicBackendURL, cfg.LocalBackendURL)

	g, gc := errgroup.WithContext(c)
	g.Go(func() error {
		return health.Serve(gc, cfg.Port, httpRouter)
	})
	g.Go(func() error {
		return bot.Run(gc)
	})
	return g.Wait()
}

func newDiagnoseCommand(v *viper.Viper) *cobra.Command {
	clearWebhook := true

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Check the bot token and clear a webhook that blocks polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := myconfig.Load(v, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Token (first 10 chars): %s...\n", prefix(cfg.TelegramToken, 10))
			api, err := telegram.Connect(cfg.TelegramToken)
			if err != nil {
				fmt.Fprintf(out, "[ERROR] Token is invalid: %s\n", err)
				return err
			}

			d, err := telegram.Diagnose(api, clearWebhook)
			if err != nil {
				fmt.Fprintf(out, "[ERROR] %s\n", err)
				return err
			}

			fmt.Fprintf(out, "[OK] Token is valid\n")
			fmt.Fprintf(out, "Bot name: %s\n", d.BotName)
			fmt.Fprintf(out, "Bot username: @%s\n", d.Username)
			if d.WebhookURL != "" {
				fmt.Fprintf(out, "Webhook: %s (pending updates: %d, last error: %q)\n", d.WebhookURL, d.PendingUpdates, d.LastWebhookError)
			}
			if d.WebhookCleared {
				fmt.Fprintf(out, "[OK] Webhook deleted/cleared\n")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearWebhook, "clear-webhook", clearWebhook, "delete the webhook so polling works")

	return cmd
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
