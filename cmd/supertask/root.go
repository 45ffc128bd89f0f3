package main

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/app"
	"github.com/Joseda-hg/supertask/internal/config"
	"github.com/Joseda-hg/supertask/internal/db"
	"github.com/Joseda-hg/supertask/internal/logging"
	"github.com/Joseda-hg/supertask/internal/session"
	"github.com/Joseda-hg/supertask/internal/tui"
)

type rootOptions struct {
	configPath string
	dbPath     string
	apiURL     string
	logLevel   string
}

// runtime is everything a command needs once config, storage and the API
// client are wired.
type runtime struct {
	cfg     config.Config
	store   *db.Store
	session *app.Session
	log     *logrus.Logger

	sqlDB   *sql.DB
	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	if rt.sqlDB != nil {
		_ = rt.sqlDB.Close()
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "supertask",
		Short:         "Terminal client for the SuperTask API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(opts, true, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()
			return tui.Run(rt.session, rt.cfg.ExportDir, rt.log)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite db path for the stored session")
	flags.StringVar(&opts.apiURL, "api-url", "", "API base URL")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newPasswdCmd(opts),
		newStatusCmd(opts),
		newTasksCmd(opts),
		newCategoriesCmd(opts),
		newServeCmd(opts),
	)

	return rootCmd
}

// setup loads config, opens the session store and builds the API client.
// Interactive mode logs to a file since the terminal belongs to the UI.
func setup(opts *rootOptions, interactive bool, stderr io.Writer) (*runtime, error) {
	cfgPath, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "supertask.db")
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	config.ApplyEnv(&cfg)
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = config.DefaultAPIURL
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}

	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}
	if interactive {
		logPath := filepath.Join(filepath.Dir(cfg.DBPath), "supertask.log")
		logger, closeLog, err := logging.OpenFile(cfg, logPath)
		if err != nil {
			return nil, err
		}
		rt.log = logger
		rt.closers = append(rt.closers, closeLog)
	} else {
		logger, err := logging.New(cfg, stderr)
		if err != nil {
			return nil, err
		}
		rt.log = logger
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.sqlDB = sqlDB
	rt.store = db.NewStore(sqlDB)

	client := api.New(cfg.APIURL, session.NewTokenStore(rt.store),
		api.WithLogger(rt.log),
		api.WithTimeout(time.Duration(cfg.RequestTimeout)),
	)
	rt.session = app.NewSession(client, rt.log)
	rt.log.WithField("api_url", client.BaseURL()).Debug("client ready")
	return rt, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// withRuntime wraps a non-interactive command body.
func withRuntime(opts *rootOptions, run func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := setup(opts, false, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()
		return run(cmd.Context(), cmd, rt, args)
	}
}

func stdinLine(in io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(in, 4096))
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimRight(line, "\r")
}
