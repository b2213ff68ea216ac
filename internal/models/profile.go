package models

// ProfileSummary is the read-only projection the profile store serves for a
// user identity. Embedded in interest listings and notification payloads; the
// core never writes it.
type ProfileSummary struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Skills     string   `json:"skills,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Location   string   `json:"location,omitempty"`
}
