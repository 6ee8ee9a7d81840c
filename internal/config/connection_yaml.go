package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// connectionAlias mirrors Connection's shape for yaml.v3 decoding without
// recursing back into UnmarshalYAML.
type connectionAlias struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	AdapterType string `yaml:"adapter_type"`
}

// UnmarshalYAML resolves a "env:VAR_NAME" password form against the process
// environment at load time (spec.md SPEC_FULL §4.7); the literal form is
// otherwise used as-is. The resolved value is never logged.
func (c *Connection) UnmarshalYAML(value *yaml.Node) error {
	var raw connectionAlias
	if err := value.Decode(&raw); err != nil {
		return err
	}

	password := raw.Password
	if strings.HasPrefix(password, "env:") {
		varName := strings.TrimPrefix(password, "env:")
		value, ok := os.LookupEnv(varName)
		if !ok {
			return ferrors.NewMissingConfig("environment variable " + varName + " for connection password")
		}
		password = value
	}

	c.Host = raw.Host
	c.Port = raw.Port
	c.User = raw.User
	c.Password = password
	c.Database = raw.Database
	c.AdapterType = raw.AdapterType
	return nil
}
