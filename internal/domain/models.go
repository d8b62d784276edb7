package domain

import (
	"fmt"
	"time"
)

// DefaultInterval is used for sites that don't set a watch interval.
const DefaultInterval = 60 * time.Second

type Admin struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Site is a monitored endpoint. Up and LastError are written only by the
// watcher that owns the site.
type Site struct {
	Name       string        `json:"name"`
	URL        string        `json:"url"`
	Interval   time.Duration `json:"interval"`
	AdminEmail string        `json:"admin_email"`
	Up         bool          `json:"up"`
	LastError  string        `json:"last_error,omitempty"`
}

func NewSite(name, url string, interval time.Duration, adminEmail string) *Site {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Site{
		Name:       name,
		URL:        url,
		Interval:   interval,
		AdminEmail: adminEmail,
		Up:         true,
	}
}

// Record overwrites the last observed status with the outcome of a probe.
func (s *Site) Record(up bool, reason string) {
	s.Up = up
	if up {
		s.LastError = ""
		return
	}
	s.LastError = reason
}

func (s *Site) String() string {
	return fmt.Sprintf("<Site %s url: %s>", s.Name, s.URL)
}
