package rsvps

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLength    = 200
	maxDietaryLength = 1000
	maxMessageLength = 2000

	guestsFivePlus = "5+"
)

var (
	// Events guests can attend, in display order.
	Events = []string{"Mehendi", "Sangeet", "Wedding", "Reception"}

	GuestCounts = []string{"1", "2", "3", "4", guestsFivePlus}

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type RSVP struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	NumGuests string    `json:"numGuests"`
	Events    []string  `json:"events"`
	Dietary   string    `json:"dietary"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repo interface {
	// Create stores r and sets its ID and timestamps.
	Create(ctx context.Context, r *RSVP) error
	// List returns every RSVP, newest first.
	List(ctx context.Context) ([]RSVP, error)
	// Delete removes the RSVP with id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}

// Guests is the head count of one RSVP; "5+" counts as five.
func (r RSVP) Guests() int {
	if r.NumGuests == guestsFivePlus {
		return 5
	}
	n, err := strconv.Atoi(r.NumGuests)
	if err != nil {
		return 0
	}
	return n
}

func TotalGuests(list []RSVP) int {
	total := 0
	for _, r := range list {
		total += r.Guests()
	}
	return total
}

// Parse validates a public submission. Fields of the wrong JSON type are
// treated as missing, unknown events are dropped, and the free-text fields are
// truncated rather than rejected. details lists every failed rule.
func Parse(body map[string]any) (r RSVP, details []string) {
	r.FullName = strings.TrimSpace(stringField(body, "fullName"))
	if r.FullName == "" {
		details = append(details, "Full name is required")
	}
	if utf8.RuneCountInString(r.FullName) > maxNameLength {
		details = append(details, "Full name must be under 200 characters")
	}

	r.Email = strings.TrimSpace(stringField(body, "email"))
	if r.Email == "" {
		details = append(details, "Email is required")
	} else if !emailPattern.MatchString(r.Email) {
		details = append(details, "Invalid email format")
	}

	r.NumGuests = stringField(body, "numGuests")
	if !slices.Contains(GuestCounts, r.NumGuests) {
		details = append(details, "Invalid number of guests")
	}

	r.Events = []string{}
	if events, ok := body["events"].([]any); ok {
		for _, e := range events {
			if s, ok := e.(string); ok && slices.Contains(Events, s) {
				r.Events = append(r.Events, s)
			}
		}
	}
	if len(r.Events) == 0 {
		details = append(details, "At least one event must be selected")
	}

	r.Dietary = truncate(strings.TrimSpace(stringField(body, "dietary")), maxDietaryLength)
	r.Message = truncate(strings.TrimSpace(stringField(body, "message")), maxMessageLength)

	return r, details
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
