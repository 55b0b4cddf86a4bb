package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"github.com/aakashak2000/amd-ai-scheduler/internal/caldav"
	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/coordinator"
	"github.com/aakashak2000/amd-ai-scheduler/internal/google"
	"github.com/aakashak2000/amd-ai-scheduler/internal/ics"
	"github.com/aakashak2000/amd-ai-scheduler/internal/mailparse"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
	"github.com/aakashak2000/amd-ai-scheduler/internal/oracle"
	"github.com/aakashak2000/amd-ai-scheduler/internal/provider"
	"github.com/aakashak2000/amd-ai-scheduler/internal/schedule"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "scheduler",
		Usage: "Negotiate a meeting time that satisfies every participant's calendar and preferences.",
		Commands: []*cli.Command{
			scheduleCommand(),
			slotsCommand(),
			authCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run one negotiation from a JSON meeting request.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "request", Required: true, Usage: "Path to the JSON meeting request file."},
			&cli.StringFlag{Name: "config", Value: "scheduler.yaml", Usage: "Path to the scheduling config file."},
			&cli.StringFlag{Name: "provider", Value: "static", Usage: "Calendar source: static (request payload), google, or caldav."},
			&cli.StringFlag{Name: "export-ics", Usage: "Write the scheduled event to this .ics file on success."},
			&cli.BoolFlag{Name: "publish", Usage: "Publish the scheduled event back to the CalDAV calendar (caldav provider only)."},
			&cli.BoolFlag{Name: "no-oracle", Usage: "Skip the reasoning oracle even when GEMINI_API_KEY is set."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			req, err := loadRequest(c.String("request"))
			if err != nil {
				return err
			}

			calendars, err := buildCalendarProvider(c, logger, req)
			if err != nil {
				return err
			}

			orc, closeOracle := buildOracle(c, logger)
			defer closeOracle()

			prefs := provider.NewMemoryPreferences(provider.DefaultPreferences(cfg.DefaultBufferMinutes))
			coord := coordinator.New(cfg, logger, calendars, prefs, orc)

			outcome, err := coord.Schedule(c.Context, req)
			if err != nil {
				return fmt.Errorf("scheduling failed: %w", err)
			}

			if path := c.String("export-ics"); path != "" && outcome.ScheduledEvent != nil {
				if err := exportICS(path, outcome, req); err != nil {
					return err
				}
				logger.Info("Wrote scheduled event", "file", path)
			}

			if c.Bool("publish") && outcome.ScheduledEvent != nil {
				client, ok := calendars.(*caldav.Client)
				if !ok {
					return fmt.Errorf("--publish requires the caldav provider")
				}
				attendees := make([]string, 0, len(req.Attendees))
				for _, att := range req.Attendees {
					attendees = append(attendees, att.Email)
				}
				if err := client.PublishEvent(c.Context, *outcome.ScheduledEvent, req.From, attendees); err != nil {
					return fmt.Errorf("failed to publish scheduled event: %w", err)
				}
			}

			out, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode outcome: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func slotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "Dump each attendee's candidate slots for the target date (debugging aid).",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "request", Required: true, Usage: "Path to the JSON meeting request file."},
			&cli.StringFlag{Name: "config", Value: "scheduler.yaml", Usage: "Path to the scheduling config file."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			req, err := loadRequest(c.String("request"))
			if err != nil {
				return err
			}

			generator := schedule.NewGenerator(cfg, logger)
			prefs := provider.DefaultPreferences(cfg.DefaultBufferMinutes)

			date, duration, err := slotsTarget(cfg, req)
			if err != nil {
				return err
			}

			for _, att := range req.Attendees {
				tz := att.Timezone
				if tz == "" {
					tz = cfg.DefaultTimezone
				}
				profile := &models.ParticipantProfile{
					Email:       att.Email,
					Timezone:    tz,
					Calendar:    att.Events,
					Preferences: prefs,
				}
				if att.Preferences != nil {
					profile.Preferences = *att.Preferences
				}

				fmt.Printf("%s (%s):\n", att.Email, tz)
				for _, slot := range generator.GenerateSlots(profile, date, duration) {
					fmt.Printf("  %s - %s  score %.2f\n",
						slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04"), slot.PreferenceScore)
				}
			}
			return nil
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func loadRequest(path string) (coordinator.Request, error) {
	var req coordinator.Request
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read request file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	return req, nil
}

// buildCalendarProvider selects where attendee calendars come from: the
// request payload itself, Google Calendar, or a CalDAV server.
func buildCalendarProvider(c *cli.Context, logger *slog.Logger, req coordinator.Request) (provider.CalendarProvider, error) {
	switch c.String("provider") {
	case "static":
		events := make(map[string][]models.CalendarEvent, len(req.Attendees))
		for _, att := range req.Attendees {
			events[att.Email] = att.Events
		}
		return provider.NewStaticCalendar(events), nil

	case "google":
		accounts, err := google.TokenAccounts()
		if err != nil || len(accounts) == 0 {
			return nil, fmt.Errorf("no google accounts found. Run the 'auth' command first")
		}
		client, err := google.NewClient(c.Context, logger,
			os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"), accounts[0])
		if err != nil {
			return nil, fmt.Errorf("failed to create google client: %w", err)
		}
		return client, nil

	case "caldav":
		endpoint := os.Getenv("CALDAV_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("CALDAV_ENDPOINT environment variable not set")
		}
		client, err := caldav.NewClient(logger, endpoint,
			os.Getenv("CALDAV_USERNAME"), os.Getenv("CALDAV_PASSWORD"), os.Getenv("CALDAV_CALENDAR_NAME"))
		if err != nil {
			return nil, fmt.Errorf("failed to create caldav client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown calendar provider %q", c.String("provider"))
	}
}

// buildOracle selects the reasoning oracle once at startup: Gemini when an
// API key is configured, the deterministic fallback otherwise.
func buildOracle(c *cli.Context, logger *slog.Logger) (oracle.Oracle, func()) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if c.Bool("no-oracle") || apiKey == "" {
		return oracle.Noop{}, func() {}
	}

	gemini, err := oracle.NewGemini(c.Context, logger, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		logger.Warn("Gemini oracle unavailable, using deterministic selection", "error", err)
		return oracle.Noop{}, func() {}
	}
	return gemini, func() { _ = gemini.Close() }
}

func exportICS(path string, outcome *coordinator.Outcome, req coordinator.Request) error {
	attendees := make([]string, 0, len(req.Attendees))
	for _, att := range req.Attendees {
		attendees = append(attendees, att.Email)
	}
	data, err := ics.Encode(*outcome.ScheduledEvent, req.From, attendees)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ics file %s: %w", path, err)
	}
	return nil
}

// slotsTarget resolves the target date and duration the same way a full
// scheduling run would, falling back to email-content extraction.
func slotsTarget(cfg config.Config, req coordinator.Request) (time.Time, int, error) {
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid default timezone %q: %w", cfg.DefaultTimezone, err)
	}

	parsed := mailparse.Parse(req.EmailContent, time.Now().In(loc))

	date := parsed.TargetDate
	if req.TargetDate != "" {
		date, err = time.ParseInLocation("2006-01-02", req.TargetDate, loc)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid target date %q: %w", req.TargetDate, err)
		}
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = parsed.DurationMinutes
	}
	return date, duration, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
