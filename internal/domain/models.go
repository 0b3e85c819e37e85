package domain

import (
	"strings"
	"time"
)

// User represents a GitLab user as returned by the reporting backend
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	State        string     `json:"state"`
	Locked       bool       `json:"locked"`
	Bot          bool       `json:"bot"`
	IsAdmin      bool       `json:"is_admin"`
	PublicEmail  string     `json:"public_email,omitempty"`
	Email        string     `json:"email,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	WebURL       string     `json:"web_url"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

// Project represents a GitLab project
type Project struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	NameWithNamespace string   `json:"name_with_namespace"`
	PathWithNamespace string   `json:"path_with_namespace"`
	Topics            []string `json:"topics,omitempty"`
	TagList           []string `json:"tag_list,omitempty"`
	WebURL            string   `json:"web_url"`
	AvatarURL         string   `json:"avatar_url,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

// Member represents a member of a GitLab project
type Member struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	State           string `json:"state"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	WebURL          string `json:"web_url"`
	AccessLevel     int    `json:"access_level"`
	AccessLevelName string `json:"access_level_name"`
}

// Schedule represents a recurring email report configuration
type Schedule struct {
	ID         string     `json:"id"`
	UserID     int        `json:"user_id"`
	To         []string   `json:"to"`
	CC         []string   `json:"cc"`
	BCC        []string   `json:"bcc"`
	Subject    string     `json:"subject,omitempty"`
	DayOfWeek  string     `json:"day_of_week"`
	HourUTC    int        `json:"hour_utc"`
	MinuteUTC  int        `json:"minute_utc"`
	Active     bool       `json:"active"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	NextRunAt  *time.Time `json:"next_run_at,omitempty"`
}

// ScheduleDraft holds the fields needed to create or update a schedule
type ScheduleDraft struct {
	UserID    int      `json:"user_id"`
	To        []string `json:"to"`
	CC        []string `json:"cc,omitempty"`
	BCC       []string `json:"bcc,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	DayOfWeek string   `json:"day_of_week"`
	HourUTC   int      `json:"hour_utc"`
	MinuteUTC int      `json:"minute_utc"`
	Active    bool     `json:"active"`
}

// DayNames lists the day-of-week tokens accepted by the backend, Monday first
var DayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// SplitRecipients splits a comma-separated recipient string into a clean list.
// Empty segments are dropped; no address validation beyond that.
func SplitRecipients(s string) []string {
	var out []string
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
