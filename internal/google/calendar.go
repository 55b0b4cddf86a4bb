// Package google implements the calendar provider contract on top of the
// Google Calendar API. Each participant's email doubles as their calendar ID.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

const credentialsFile = "credentials.json"

// CalendarClient fetches participants' busy blocks from Google Calendar.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
}

// NewClient creates an authenticated Google Calendar client for the named
// account. The account must have completed the auth flow, which stores its
// token on disk.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, accountName string) (*CalendarClient, error) {
	oauthCfg, err := oauthConfig(clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	token, err := loadToken(accountName)
	if err != nil {
		return nil, fmt.Errorf("no token for account %s (run the 'auth' command first): %w", accountName, err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &CalendarClient{service: service, logger: logger}, nil
}

// GetEvents returns the participant's events inside [start, end). Events come
// back with explicit UTC-offset timestamps, as the negotiation core requires.
func (c *CalendarClient) GetEvents(ctx context.Context, participantID string, start, end time.Time) ([]models.CalendarEvent, error) {
	c.logger.Debug("Fetching events", "participant", participantID, "start", start, "end", end)

	list, err := c.service.Events.List(participantID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events for %s: %w", participantID, err)
	}

	var events []models.CalendarEvent
	for _, item := range list.Items {
		ev, ok := toInternalEvent(item)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	c.logger.Info("Fetched events from Google Calendar", "participant", participantID, "count", len(events))
	return events, nil
}

// toInternalEvent maps one API event to the internal model. All-day events
// without a concrete time do not block meeting slots and are dropped.
func toInternalEvent(item *calendar.Event) (models.CalendarEvent, bool) {
	if item.Start == nil || item.Start.DateTime == "" || item.End == nil {
		return models.CalendarEvent{}, false
	}
	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return models.CalendarEvent{}, false
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return models.CalendarEvent{}, false
	}
	return models.CalendarEvent{
		UID:           item.ICalUID,
		Summary:       item.Summary,
		StartTime:     startTime,
		EndTime:       endTime,
		AttendeeCount: len(item.Attendees),
	}, true
}

// GetOAuthConfigForAuthFlow exposes the OAuth config to the auth command.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return oauthConfig(clientID, clientSecret)
}

// oauthConfig builds the OAuth2 config from explicit credentials, falling
// back to a local credentials.json.
func oauthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or place %s in the working directory", credentialsFile)
		}
		return nil, fmt.Errorf("unable to read %s: %w", credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(raw, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", credentialsFile, err)
	}
	// Desktop app flow.
	cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return cfg, nil
}

// TokenFromWeb exchanges the code pasted by the user for a token.
func TokenFromWeb(cfg *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return cfg.Exchange(context.Background(), authCode)
}

func tokenPath(accountName string) string {
	return fmt.Sprintf("token-%s.json", accountName)
}

// SaveToken persists a token to the given file.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func loadToken(accountName string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(tokenPath(accountName))
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("corrupt token file for %s: %w", accountName, err)
	}
	return token, nil
}

// TokenAccounts lists the account names with saved tokens in the working
// directory.
func TokenAccounts() ([]string, error) {
	matches, err := filepath.Glob("token-*.json")
	if err != nil {
		return nil, err
	}
	accounts := make([]string, 0, len(matches))
	for _, m := range matches {
		accounts = append(accounts, strings.TrimSuffix(strings.TrimPrefix(m, "token-"), ".json"))
	}
	return accounts, nil
}
