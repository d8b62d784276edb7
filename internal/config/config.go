// Package config loads the watch list and transport settings. It only
// produces plain records; the polling engine never sees the file format.
//
// Example file:
//
//	client:
//	  user_agent: sitewatch/1.0
//	  timeout: 5
//	smtp:
//	  sender_name: Site Watcher
//	  sender_email: watcher@example.com
//	  smtp_host: localhost:25
//	admins:
//	  joe: joe@bloggs.com
//	sites:
//	  - name: TestSite
//	    url: http://testsite.com
//	    interval: 2
//	    admin: joe
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
)

// Env holds settings taken from the process environment.
type Env struct {
	LogDir     string // logs directory
	ConfigPath string // watch list, e.g. /etc/sitewatch/monitor.yaml
}

func FromEnv() Env {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	path := os.Getenv("SITEWATCH_CONFIG")
	if path == "" {
		path = "monitor.yaml"
	}
	return Env{LogDir: logDir, ConfigPath: path}
}

type Config struct {
	Client ClientConfig      `yaml:"client"`
	SMTP   SMTPConfig        `yaml:"smtp"`
	Admins map[string]string `yaml:"admins"` // name -> email
	Sites  []SiteConfig      `yaml:"sites"`
}

type ClientConfig struct {
	UserAgent      string   `yaml:"user_agent"`
	Timeout        Duration `yaml:"timeout"`
	DNSDiagnostics bool     `yaml:"dns_diagnostics"`
}

type SMTPConfig struct {
	SenderName  string `yaml:"sender_name"`
	SenderEmail string `yaml:"sender_email"`
	Host        string `yaml:"smtp_host"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

type SiteConfig struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Interval Duration `yaml:"interval"` // defaults to 60s
	Admin    string   `yaml:"admin"`
}

// Duration accepts a number of seconds (2, 0.5) or a Go duration string ("90s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a config document. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document leaves cfg zero; Validate reports what is missing
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem in the file at once.
func (c *Config) Validate() error {
	var errs error

	if strings.TrimSpace(c.Client.UserAgent) == "" {
		errs = multierr.Append(errs, fmt.Errorf("client.user_agent is required"))
	}
	if c.Client.Timeout.Duration() <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("client.timeout must be positive"))
	}

	if c.SMTP.SenderName == "" {
		errs = multierr.Append(errs, fmt.Errorf("smtp.sender_name is required"))
	}
	if _, err := mail.ParseAddress(c.SMTP.SenderEmail); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("smtp.sender_email %q: %w", c.SMTP.SenderEmail, err))
	}
	if c.SMTP.Host == "" {
		errs = multierr.Append(errs, fmt.Errorf("smtp.smtp_host is required"))
	}

	for _, name := range sortedKeys(c.Admins) {
		if _, err := mail.ParseAddress(c.Admins[name]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("admins.%s: email %q: %w", name, c.Admins[name], err))
		}
	}

	if len(c.Sites) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no sites configured"))
	}
	seen := make(map[string]bool, len(c.Sites))
	for i, s := range c.Sites {
		where := fmt.Sprintf("sites[%d]", i)
		if s.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: name is required", where))
		} else {
			where = fmt.Sprintf("sites[%d] (%s)", i, s.Name)
			if seen[s.Name] {
				errs = multierr.Append(errs, fmt.Errorf("%s: duplicate site name", where))
			}
			seen[s.Name] = true
		}
		if err := validateURL(s.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", where, err))
		}
		if s.Interval.Duration() < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: interval must not be negative", where))
		}
		if s.Admin == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: admin is required", where))
		} else if _, ok := c.Admins[s.Admin]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: admin %q not found", where, s.Admin))
		}
	}
	return errs
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q: want an absolute http(s) URL", raw)
	}
	return nil
}

// BuildSites resolves admin references into one Site per entry, in file order.
func (c *Config) BuildSites() []*domain.Site {
	out := make([]*domain.Site, 0, len(c.Sites))
	for _, s := range c.Sites {
		out = append(out, domain.NewSite(s.Name, s.URL, s.Interval.Duration(), c.Admins[s.Admin]))
	}
	return out
}

// AdminContacts lists admins sorted by name.
func (c *Config) AdminContacts() []domain.Admin {
	out := make([]domain.Admin, 0, len(c.Admins))
	for _, name := range sortedKeys(c.Admins) {
		out = append(out, domain.Admin{Name: name, Email: c.Admins[name]})
	}
	return out
}

func (c ClientConfig) Probe() probe.ClientConfig {
	return probe.ClientConfig{
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout.Duration(),
	}
}

func (s SMTPConfig) Notify() notify.SMTPConfig {
	return notify.SMTPConfig{
		SenderName:  s.SenderName,
		SenderEmail: s.SenderEmail,
		Host:        s.Host,
		Username:    s.Username,
		Password:    s.Password,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
