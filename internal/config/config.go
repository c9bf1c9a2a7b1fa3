// Package config wraps Viper for reading component configuration sections.
package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ViperConfig wraps a Viper instance. Components read their own section
// with Section, starting from their DefaultConfig so unset keys keep the
// package defaults.
type ViperConfig struct {
	v *viper.Viper
}

// New creates a Config backed by the given Viper instance.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

// Section decodes the top-level section key into target. Durations accept
// Go duration strings ("30s", "24h"). A missing section leaves target as is.
//
// AllSettings is used instead of UnmarshalKey because only it resolves
// environment overrides of nested keys.
func (c *ViperConfig) Section(key string, target any) error {
	section, ok := c.v.AllSettings()[key]
	if !ok {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("decode %s config: %w", key, err)
	}
	if err := dec.Decode(section); err != nil {
		return fmt.Errorf("decode %s config: %w", key, err)
	}
	return nil
}

// GetString returns a single string setting such as database.path.
func (c *ViperConfig) GetString(key string) string {
	return c.v.GetString(key)
}
