package config

import (
	"github.com/spf13/viper"
	"github.com/timmy/pokedex/internal/domain"
)

// Federation remote names.
const (
	RemoteDesignSystem = "design_system"
	RemoteHavy         = "havy"
)

// RemotesConfig holds the statically configured federation remotes.
// A runtime manifest may override versions and origins later.
type RemotesConfig struct {
	DesignSystem RemoteEntryConfig     `mapstructure:"design_system"`
	Havy         RemoteEntryConfig     `mapstructure:"havy"`
	Extra        []domain.RemoteConfig `mapstructure:"extra"`
}

// RemoteEntryConfig is the origin and version of one remote.
type RemoteEntryConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Version string `mapstructure:"version"`
}

// List returns every configured remote with its name filled in.
// An empty version resolves to "latest".
func (c RemotesConfig) List() []domain.RemoteConfig {
	out := []domain.RemoteConfig{
		c.DesignSystem.toRemote(RemoteDesignSystem),
		c.Havy.toRemote(RemoteHavy),
	}
	for _, r := range c.Extra {
		if r.Name == "" {
			continue
		}
		if r.Version == "" {
			r.Version = domain.VersionLatest
		}
		out = append(out, r)
	}
	return out
}

func (e RemoteEntryConfig) toRemote(name string) domain.RemoteConfig {
	version := e.Version
	if version == "" {
		version = domain.VersionLatest
	}
	return domain.RemoteConfig{Name: name, BaseURL: e.BaseURL, Version: version}
}

func setRemoteDefaults(v *viper.Viper) {
	v.SetDefault("remotes.design_system.base_url", "http://localhost:5001")
	v.SetDefault("remotes.design_system.version", domain.VersionLatest)
	v.SetDefault("remotes.havy.base_url", "http://localhost:5002")
	v.SetDefault("remotes.havy.version", domain.VersionLatest)
}

func bindRemoteEnv(v *viper.Viper) {
	v.BindEnv("remotes.design_system.base_url", "DS_URL")
	v.BindEnv("remotes.design_system.version", "DS_VERSION")
	v.BindEnv("remotes.havy.base_url", "HAVY_URL")
	v.BindEnv("remotes.havy.version", "HAVY_VERSION")
}
