package commands

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/mmapbuf"
)

// newViper sets up environment lookup and registers every config key so
// that MMAPCTL_* variables are seen by Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MMAPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := mmapbuf.DefaultConfig()
	v.SetDefault("mode", "")
	v.SetDefault("perm", "")
	v.SetDefault("scope", def.Scope)
	v.SetDefault("length", "")
	v.SetDefault("offset", "")
	v.SetDefault("advice", def.Advice)
	v.SetDefault("increment", def.Increment)
	v.SetDefault("initialize", def.Initialize)
	v.SetDefault("memory_limit", "")
	v.SetDefault("sync_rate", "")
	v.SetDefault("lock_retry", "0s")
	v.SetDefault("log_level", "")
	return v
}

// config merges defaults, the config file, the environment and flags.
func (a *app) config(cmd *cobra.Command) (*mmapbuf.Config, error) {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", a.configFile, err)
		}
	}

	var cfg mmapbuf.Config
	if err := a.v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if f := cmd.Flags().Lookup("ipc-key"); f != nil && f.Changed {
		key, err := cmd.Flags().GetInt("ipc-key")
		if err != nil {
			return nil, err
		}
		if cfg.IPC == nil {
			cfg.IPC = &mmapbuf.IPCSection{}
		}
		cfg.IPC.Key = key
	}
	return &cfg, nil
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
