// Package main is the entry point for the raama terminal notification
// client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/api"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/app"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/credential"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/session"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/store"
	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/theme"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	if err := model.LoadDotEnv(); err != nil {
		logrus.WithError(err).Warn("loading .env")
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logFile, err := openLog(cfg.Storage.LogPath, cfg.Storage.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open log file")
	}
	defer logFile.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		logrus.WithError(err).Fatal("failed to create data directory")
	}
	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()

	ctx := context.Background()
	sess := session.New(credential.System{}, st)
	theme.Use(sess.ThemeOr(ctx, cfg.Display.Theme))

	for {
		user, err := login(ctx, cfg, sess)
		if errors.Is(err, huh.ErrUserAborted) {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		reason, message, err := run(ctx, cfg, *configPath, sess, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if message != "" {
			fmt.Println(message)
		}
		if reason != app.ExitSessionExpired {
			return
		}
	}
}

// openLog sends logrus and the standard logger used by bubbletea to path,
// since the terminal UI owns stdout.
func openLog(path, level string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := tea.LogToFile(path, "raama")
	if err != nil {
		return nil, err
	}
	logrus.SetOutput(f)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	return f, nil
}

// login returns the profile for the stored token, asking for a new token
// until the backend accepts one.
func login(ctx context.Context, cfg *model.AppConfig, sess *session.Session) (model.User, error) {
	client := api.NewClient(cfg.Backend.URL, sess)

	for {
		if _, ok := sess.Token(); !ok {
			token, err := promptToken()
			if err != nil {
				return model.User{}, err
			}
			if err := sess.SetToken(token); err != nil {
				return model.User{}, err
			}
		}

		user, err := client.Me(ctx)
		if err == nil {
			if err := sess.SetUser(ctx, user); err != nil {
				logrus.WithError(err).Warn("saving user failed")
			}
			return user, nil
		}

		var authErr *api.AuthError
		if !errors.As(err, &authErr) {
			return model.User{}, fmt.Errorf("contacting %s: %w", cfg.Backend.URL, err)
		}
		fmt.Println(authErr.Message())
		if err := sess.Clear(ctx); err != nil {
			logrus.WithError(err).Error("clearing session failed")
		}
	}
}

func promptToken() (string, error) {
	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("रामा access token").
				Description("Paste the token from the web app after logging in").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// run starts the services for user and blocks until the UI exits.
func run(
	ctx context.Context,
	cfg *model.AppConfig,
	configPath string,
	sess *session.Session,
	user model.User,
) (app.ExitReason, string, error) {
	svc := app.NewServices(cfg, configPath, sess)
	defer svc.Shutdown()

	if cfg.Alerts.Desktop {
		if _, err := svc.Transport.RequestPermission(ctx); err != nil && !errors.Is(err, huh.ErrUserAborted) {
			logrus.WithError(err).Warn("requesting desktop permission failed")
		}
	}

	p := tea.NewProgram(app.New(svc, user), tea.WithAltScreen())
	svc.Attach(p)

	final, err := p.Run()
	if err != nil {
		return app.ExitQuit, "", err
	}

	m, ok := final.(app.Model)
	if !ok {
		return app.ExitQuit, "", nil
	}
	reason, message := m.Exit()
	return reason, message, nil
}
