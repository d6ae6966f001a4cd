package config

import (
	"huski/core"
	"huski/pkg/address"

	configUtil "github.com/fox-one/pkg/config"
)

const (
	defaultSecondsPerBlock = 3
	defaultMaxPriceAge     = 24 * 60 * 60
	defaultTimelockDelay   = 2 * 24 * 60 * 60
	defaultGracePeriod     = 14 * 24 * 60 * 60
	defaultDevFeeBps       = 1000
	defaultAuthMaxSkew     = 5 * 60
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("HUSKI")
	if configFile != "" {
		if err := configUtil.LoadYaml(configFile, config); err != nil {
			return err
		}
	}

	withDefaults(config)
	return nil
}

func withDefaults(cfg *core.Config) {
	if cfg.App.SecondsPerBlock <= 0 {
		cfg.App.SecondsPerBlock = defaultSecondsPerBlock
	}

	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.App.Storage == "" {
		cfg.App.Storage = "leveldb"
	}

	if cfg.App.AuthMaxSkew <= 0 {
		cfg.App.AuthMaxSkew = defaultAuthMaxSkew
	}

	if cfg.LevelDB.Path == "" {
		cfg.LevelDB.Path = "huski.db"
	}

	if cfg.Token.Symbol == "" {
		cfg.Token.Symbol = "HUSKI"
	}

	if cfg.FairLaunch.DevFeeBps <= 0 {
		cfg.FairLaunch.DevFeeBps = defaultDevFeeBps
	}

	if cfg.Oracle.MaxPriceAge <= 0 {
		cfg.Oracle.MaxPriceAge = defaultMaxPriceAge
	}

	if cfg.Timelock.Delay <= 0 {
		cfg.Timelock.Delay = defaultTimelockDelay
	}

	if cfg.Timelock.GracePeriod <= 0 {
		cfg.Timelock.GracePeriod = defaultGracePeriod
	}

	// signed requests carry checksum addresses
	for i, admin := range cfg.Admins {
		cfg.Admins[i] = address.Normalize(admin)
	}

	for i, feeder := range cfg.Oracle.Feeders {
		cfg.Oracle.Feeders[i] = address.Normalize(feeder)
	}

	cfg.Keeper.Address = address.Normalize(cfg.Keeper.Address)
	cfg.FairLaunch.Dev = address.Normalize(cfg.FairLaunch.Dev)
}
