package cfg

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type AccountType string

const (
	IMAP    AccountType = "imap"
	LOCAL   AccountType = "local"
	MAILDIR AccountType = "maildir"
)

type Config struct {
	Accounts map[string]Account `yaml:"accounts"`
}

type Account struct {
	Type                AccountType `yaml:"type"`
	ServerURL           string      `yaml:"serverURL"`
	Username            string      `yaml:"username"`
	Password            string      `yaml:"password"`
	NoTLS               bool        `yaml:"noTLS"`
	SkipTLSVerification bool        `yaml:"skipTLSVerification"`
	Proxy               string      `yaml:"proxy"`
	File                string      `yaml:"file"`
	Root                string      `yaml:"root"`
	// Locale is the regional setting the account is currently configured
	// with. It is used as the default source locale of a merge.
	Locale string `yaml:"locale"`
}

func newConfig() *Config {
	return &Config{}
}

// LoadFromFile loads the configuration from the file
func LoadFromFile(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	return loadConfig(file)
}

// loadConfig from a io.ReadCloser
func loadConfig(reader io.ReadCloser) (*Config, error) {
	defer reader.Close()
	decoder := yaml.NewDecoder(reader)
	config := newConfig()
	err := decoder.Decode(config)
	if err != nil {
		return nil, err
	}
	err = validateConfiguration(config)
	if err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfiguration(config *Config) error {
	for name, account := range config.Accounts {
		switch account.Type {
		case IMAP:
			if account.ServerURL == "" || account.Username == "" || account.Password == "" {
				return fmt.Errorf("account %q: imap accounts need serverURL, username and password", name)
			}
		case LOCAL:
			if account.File == "" {
				return fmt.Errorf("account %q: local accounts need a file", name)
			}
		case MAILDIR:
			if account.Root == "" {
				return fmt.Errorf("account %q: maildir accounts need a root", name)
			}
		default:
			return fmt.Errorf("account %q: unsupported account type %q", name, account.Type)
		}
	}
	return nil
}
