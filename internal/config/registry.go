package config

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/mailboxes.yaml
var mailboxesYAML embed.FS

// Registry holds the configuration for all watched mailboxes.
type Registry struct {
	Mailboxes []MailboxConfig `yaml:"mailboxes"`
}

// MailboxConfig defines a single IMAP mailbox the ingestion service watches.
// Credential fields may reference environment variables as ${VAR}; they are
// expanded at load time.
type MailboxConfig struct {
	ID       string `yaml:"id"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port,omitempty"`     // Default: 993
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Folder   string `yaml:"folder,omitempty"`   // Default: INBOX
	Schedule string `yaml:"schedule,omitempty"` // Cron spec for the unseen sweep
}

// LoadRegistry reads the embedded mailboxes.yaml and returns a Registry.
// The path parameter is a filesystem fallback for local development.
func LoadRegistry(path string) (*Registry, error) {
	data, err := mailboxesYAML.ReadFile("config/mailboxes.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	// Expand environment variables within the YAML content (e.g. ${EMAIL_PASS})
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, err
	}

	for i := range reg.Mailboxes {
		mb := &reg.Mailboxes[i]
		if mb.ID == "" {
			return nil, fmt.Errorf("mailbox %d: missing id", i)
		}
		if mb.Port == 0 {
			mb.Port = 993
		}
		if mb.Folder == "" {
			mb.Folder = "INBOX"
		}
	}

	return &reg, nil
}
