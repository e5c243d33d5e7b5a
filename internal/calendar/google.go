package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TokenStore persists the OAuth token obtained when an administrator connects a calendar.
type TokenStore interface {
	// LoadToken returns nil, nil when no token has been stored.
	LoadToken(ctx context.Context) (*oauth2.Token, error)
	SaveToken(ctx context.Context, tok *oauth2.Token) error
}

// GoogleConfig holds the OAuth client and target calendar.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
	CalendarID   string
}

// GoogleProvider talks to Google Calendar v3.
type GoogleProvider struct {
	oauth        *oauth2.Config
	calendarID   string
	refreshToken string
	tokens       TokenStore

	mu  sync.Mutex
	svc *gcal.Service
}

// NewGoogleProvider builds a provider. The calendar service is created lazily,
// from the configured refresh token or, failing that, the token store.
func NewGoogleProvider(cfg GoogleConfig, tokens TokenStore) *GoogleProvider {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{gcal.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		calendarID:   calendarID,
		refreshToken: cfg.RefreshToken,
		tokens:       tokens,
	}
}

// newGoogleProviderWithService wires a prebuilt service, used by tests.
func newGoogleProviderWithService(svc *gcal.Service, calendarID string) *GoogleProvider {
	return &GoogleProvider{oauth: &oauth2.Config{}, calendarID: calendarID, svc: svc}
}

// AuthURL is the consent page an administrator visits to connect the calendar.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) error {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("calendar: exchange code: %w", err)
	}
	if p.tokens != nil {
		if err := p.tokens.SaveToken(ctx, tok); err != nil {
			return fmt.Errorf("calendar: save token: %w", err)
		}
	}
	p.mu.Lock()
	p.svc = nil
	if tok.RefreshToken != "" {
		p.refreshToken = tok.RefreshToken
	}
	p.mu.Unlock()
	return nil
}

func (p *GoogleProvider) service(ctx context.Context) (*gcal.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.svc != nil {
		return p.svc, nil
	}

	var tok *oauth2.Token
	if p.refreshToken != "" {
		tok = &oauth2.Token{RefreshToken: p.refreshToken}
	} else if p.tokens != nil {
		stored, err := p.tokens.LoadToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("calendar: load token: %w", err)
		}
		tok = stored
	}
	if tok == nil {
		return nil, ErrNotConfigured
	}

	// The token source outlives the request that first builds it.
	ts := p.oauth.TokenSource(context.Background(), tok)
	svc, err := gcal.NewService(context.Background(), option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("calendar: build service: %w", err)
	}
	p.svc = svc
	return svc, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, details EventDetails) (string, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return "", err
	}
	ev := &gcal.Event{
		Summary:     details.Summary(),
		Description: details.Description(false),
		Start:       eventTime(details.Start),
		End:         eventTime(details.End()),
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
		},
	}
	if details.PatientEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: details.PatientEmail}}
	}
	created, err := svc.Events.Insert(p.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	return created.Id, nil
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, eventID string, details EventDetails) error {
	svc, err := p.service(ctx)
	if err != nil {
		return err
	}
	ev, err := svc.Events.Get(p.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar: get event: %w", err)
	}
	ev.Summary = details.Summary()
	ev.Description = details.Description(true)
	ev.Start = eventTime(details.Start)
	ev.End = eventTime(details.End())
	if _, err := svc.Events.Update(p.calendarID, eventID, ev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: update event: %w", err)
	}
	return nil
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, eventID string) error {
	svc, err := p.service(ctx)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: delete event: %w", err)
	}
	return nil
}

func (p *GoogleProvider) BusyIntervals(ctx context.Context, start, end time.Time) ([]Interval, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return nil, err
	}
	res, err := svc.Events.List(p.calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	out := make([]Interval, 0, len(res.Items))
	for _, item := range res.Items {
		s, err := parseEventTime(item.Start)
		if err != nil {
			return nil, err
		}
		e, err := parseEventTime(item.End)
		if err != nil {
			return nil, err
		}
		out = append(out, Interval{Start: s, End: e})
	}
	return out, nil
}

func eventTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{DateTime: t.UTC().Format(time.RFC3339), TimeZone: "UTC"}
}

// parseEventTime reads a timed event, or an all-day event's date at UTC midnight.
func parseEventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("calendar: event missing time")
	}
	if strings.TrimSpace(dt.DateTime) != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("calendar: parse event time: %w", err)
		}
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", dt.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar: parse event date: %w", err)
	}
	return t, nil
}
