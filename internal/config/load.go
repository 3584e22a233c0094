package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envBoundKeys are settings that may come from the environment (prefixed
// REPOPULSE_, dots become underscores), so credentials and endpoints stay
// off the command line.
var envBoundKeys = []string{
	"storage.bucket",
	"storage.region",
	"notify.recipient",
	"notify.smtp_host",
	"notify.smtp_port",
	"notify.smtp_username",
	"notify.smtp_password",
	"notify.from",
}

// Load merges an optional config file and the environment into c. Values
// already set on c (defaults or flags) are kept unless the file or
// environment provides the key. Call Validate afterwards.
func (c *Config) Load(path string) error {
	v := viper.New()
	v.SetEnvPrefix("REPOPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBoundKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("%w: bind env for %s: %v", ErrConfig, key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read config file %s: %v", ErrConfig, path, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("%w: decode config: %v", ErrConfig, err)
	}
	return nil
}
