package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/listmasterapp/listmaster/internal/auth"
	"github.com/listmasterapp/listmaster/internal/middleware"
	"github.com/listmasterapp/listmaster/internal/notify"
	"github.com/listmasterapp/listmaster/internal/service"
	"github.com/listmasterapp/listmaster/internal/storage/sqlite"
	"github.com/listmasterapp/listmaster/pkg/logging"
)

func main() {
	logging.Setup()

	root := newRootCommand()
	if err := root.Execute(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "listmaster-server",
		Short:        "ListMaster ownership and sharing service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(configFile); err != nil {
				return err
			}
			return serve()
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to config file (optional)")
	return cmd
}

func loadConfig(configFile string) error {
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("db_path", "./data/listmaster.db")
	viper.SetDefault("token_ttl", "720h")
	viper.SetDefault("smtp.port", 587)

	viper.SetEnvPrefix("LISTMASTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if viper.GetString("jwt_secret") == "" {
		return fmt.Errorf("jwt_secret is required (set LISTMASTER_JWT_SECRET)")
	}
	return nil
}

func serve() error {
	store, err := sqlite.New(viper.GetString("db_path"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", viper.GetString("db_path"))

	tokenTTL, err := time.ParseDuration(viper.GetString("token_ttl"))
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	jwtManager := auth.NewJWTManager(viper.GetString("jwt_secret"), tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	var notifier notify.Notifier = notify.Noop{}
	if host := viper.GetString("smtp.host"); host != "" {
		notifier = &notify.SMTPNotifier{
			Host:     host,
			Port:     viper.GetInt("smtp.port"),
			From:     viper.GetString("smtp.from"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
		}
		slog.Info("smtp notifications enabled", "host", host)
	}

	listSvc := service.NewListService(store, notifier)
	groupSvc := service.NewGroupService(store, notifier)
	userSvc := service.NewUserService(store, authenticator, jwtManager)

	protected := http.NewServeMux()
	listSvc.RegisterRoutes(protected)
	groupSvc.RegisterRoutes(protected)
	userSvc.RegisterRoutes(protected)
	authed := middleware.RequireAuth(jwtManager, protected)

	mux := http.NewServeMux()
	mux.Handle("/lists/", authed)
	mux.Handle("/groups/", authed)
	mux.Handle("/users/", authed)
	// Exact method+path patterns take precedence over the prefix routes.
	userSvc.RegisterPublicRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Logging(middleware.CORS(mux))
	// h2c allows HTTP/2 without TLS for clients that want it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := viper.GetString("listen_addr")
	slog.Info("server starting", "address", addr)
	return http.ListenAndServe(addr, h2cHandler)
}
