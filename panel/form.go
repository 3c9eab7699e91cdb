// Package panel holds the view-state logic behind the public feedback form
// and the authenticated panel: field buffers, filters, paging, edit/delete
// flows and transient banners. Rendering is left to whatever front end
// consumes it.
package panel

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"event-feedback-server/client"
)

// Banner kinds.
const (
	BannerSuccess = "success"
	BannerError   = "error"
)

// Banner is a transient success/error message with auto-dismiss.
type Banner struct {
	Kind string
	Text string
}

const (
	successBannerTTL = 3 * time.Second
	errorBannerTTL   = 5 * time.Second
)

// Form is the public submission form: one buffer per field, exactly like the
// controlled inputs it models. Rating is kept as the raw select value and
// coerced to an integer only when the payload is built.
type Form struct {
	Client *client.Client

	mu          sync.Mutex
	Name        string
	Email       string
	EventName   string
	Division    string
	Rating      string
	Comment     string
	Suggestion  string
	banner      *Banner
	bannerTimer *time.Timer
}

func NewForm(c *client.Client) *Form {
	return &Form{Client: c}
}

// Submit validates the required fields, builds the create payload and sends
// it. Missing required fields never reach the network. On success all fields
// reset and a success banner shows for a few seconds.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	eventName := strings.TrimSpace(f.EventName)
	division := f.Division
	ratingRaw := f.Rating
	comment := strings.TrimSpace(f.Comment)
	suggestion := strings.TrimSpace(f.Suggestion)
	f.mu.Unlock()

	if name == "" || email == "" || eventName == "" || division == "" || ratingRaw == "" {
		f.setBanner(BannerError, "Please fill in all required fields", errorBannerTTL)
		return errRequiredFields
	}
	rating, err := strconv.Atoi(ratingRaw)
	if err != nil || rating < 1 || rating > 5 {
		f.setBanner(BannerError, "Please select a rating between 1 and 5", errorBannerTTL)
		return errRequiredFields
	}

	input := client.CreateInput{
		Name:      name,
		Email:     email,
		EventName: eventName,
		Division:  division,
		Rating:    rating,
	}
	// Empty optionals are omitted from the payload, not sent as "".
	if comment != "" {
		input.Comment = &comment
	}
	if suggestion != "" {
		input.Suggestion = &suggestion
	}

	if _, err := f.Client.Create(ctx, input); err != nil {
		f.setBanner(BannerError, "Failed to submit feedback", errorBannerTTL)
		return err
	}

	f.mu.Lock()
	f.Name, f.Email, f.EventName, f.Division = "", "", "", ""
	f.Rating, f.Comment, f.Suggestion = "", "", ""
	f.mu.Unlock()
	f.setBanner(BannerSuccess, "Feedback submitted successfully", successBannerTTL)
	return nil
}

// Banner returns the active banner, or nil once dismissed.
func (f *Form) Banner() *Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

func (f *Form) setBanner(kind, text string, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bannerTimer != nil {
		f.bannerTimer.Stop()
	}
	f.banner = &Banner{Kind: kind, Text: text}
	f.bannerTimer = time.AfterFunc(ttl, func() {
		f.mu.Lock()
		f.banner = nil
		f.mu.Unlock()
	})
}

// Close cancels any pending banner timer.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bannerTimer != nil {
		f.bannerTimer.Stop()
		f.bannerTimer = nil
	}
}
