package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/auth"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/handler"
	appI18n "github.com/singhsimarjot13/Aptuquest-2025/internal/i18n"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/mailer"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/store"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aptuquest",
		Short: "Aptitude quiz server for the ITian Club recruitment drive",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `aptuquest --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "aptuquest.db", "SQLite database path")
	f.String("base-url", "http://localhost:8080", "Public base URL used for OAuth redirects")
	f.StringSliceP("questions", "q", []string{"questions/aptitude_en.json"}, "Paths to question bank JSON files (repeatable)")
	f.IntP("questions-per-category", "n", 10, "Questions drawn per category")
	f.Int("quiz-timer", 1200, "Quiz countdown in seconds")
	f.Duration("session-ttl", store.DefaultSessionTTL, "Inactivity timeout for login sessions")
	f.StringSlice("admin-emails", nil, "Email addresses granted admin access (repeatable)")
	f.String("google-client-id", "", "Google OAuth client ID")
	f.String("google-client-secret", "", "Google OAuth client secret")
	f.String("smtp-host", "smtp.gmail.com", "SMTP relay host")
	f.Int("smtp-port", 587, "SMTP relay port")
	f.String("smtp-username", "", "SMTP username")
	f.String("smtp-password", "", "SMTP password or app password")
	f.String("mail-from", "", "From address for result emails (defaults to smtp-username)")
	f.Duration("mail-worker-interval", 15*time.Second, "How often the mail worker drains the outbox")
	f.Int("mail-max-attempts", 5, "Delivery attempts before a notification is marked failed")
	f.StringP("lang", "l", "en", "UI language")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export quiz results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "aptuquest.db", "SQLite database path")
	f.String("quiz-id", "", "Quiz identifier for output (required)")
	f.String("name", "Aptitude Quiz", "Quiz name for output")
	f.String("date", "", "Quiz date in YYYY-MM-DD format (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("quiz-id")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("APTUQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("aptuquest")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/aptuquest")
	v.AddConfigPath("/etc/aptuquest")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Load question banks.
	if err := loadQuestions(db, v.GetStringSlice("questions")); err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	clientID := v.GetString("google-client-id")
	clientSecret := v.GetString("google-client-secret")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("google-client-id and google-client-secret are required")
	}

	baseURL := strings.TrimRight(v.GetString("base-url"), "/")
	provider := auth.NewGoogleProvider(clientID, clientSecret, baseURL+"/google_login")

	admins := v.GetStringSlice("admin-emails")
	if len(admins) == 0 {
		slog.Warn("no admin-emails configured, admin pages will be unreachable")
	}
	policy := auth.NewPolicy(admins)

	quizCfg := model.QuizConfig{
		QuestionsPerCategory: v.GetInt("questions-per-category"),
		TimerSeconds:         v.GetInt("quiz-timer"),
		SecureCookies:        v.GetBool("secure-cookies"),
	}

	h := handler.New(db, provider, policy, quizCfg, v.GetDuration("session-ttl"))

	// Mail worker drains the outbox in the background. Without SMTP
	// credentials notifications accumulate as pending until configured.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if v.GetString("smtp-username") != "" {
		from := v.GetString("mail-from")
		if from == "" {
			from = v.GetString("smtp-username")
		}
		sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     v.GetString("smtp-host"),
			Port:     v.GetInt("smtp-port"),
			Username: v.GetString("smtp-username"),
			Password: v.GetString("smtp-password"),
			From:     from,
		})
		if err != nil {
			return fmt.Errorf("create SMTP sender: %w", err)
		}
		worker := mailer.NewWorker(db, sender, v.GetDuration("mail-worker-interval"), v.GetInt("mail-max-attempts"))
		go worker.Run(ctx)
	} else {
		slog.Warn("smtp-username not set, result emails will stay queued")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"base_url", baseURL,
		"questions_per_category", quizCfg.QuestionsPerCategory,
		"quiz_timer", quizCfg.TimerSeconds,
		"session_ttl", v.GetDuration("session-ttl"),
		"admins", len(admins),
		"lang", lang,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ExportAllResults()
	if err != nil {
		return fmt.Errorf("export results: %w", err)
	}

	// Determine num_questions from the first result (all participants get
	// the same number of questions).
	numQuestions := 0
	if len(results) > 0 {
		numQuestions = len(results[0].Questions)
	}

	export := model.QuizExport{
		QuizID:       v.GetString("quiz-id"),
		Name:         v.GetString("name"),
		Date:         v.GetString("date"),
		NumQuestions: numQuestions,
		Results:      results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

func loadQuestions(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}

		if storedHash == hash {
			slog.Info("questions file unchanged, skipping", "path", path)
			continue
		}
		if storedHash != "" {
			slog.Warn("questions file changed since last import, skipping to avoid breaking served quizzes",
				"path", path)
			continue
		}

		var questions []model.QuestionImport
		if err := json.Unmarshal(data, &questions); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		for _, qi := range questions {
			_, err := db.InsertQuestion(model.Question{
				Category: qi.Category,
				Text:     qi.Text,
				Options:  qi.Options,
				Answer:   qi.Answer,
				Multiple: qi.Multiple,
			})
			if err != nil {
				return fmt.Errorf("insert question from %s: %w", path, err)
			}
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported questions", "path", path, "count", len(questions))
	}

	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
