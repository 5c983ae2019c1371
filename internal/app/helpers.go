package app

import (
	"os"
	"time"

	"github.com/negocios-forms/core/internal/config"
	"github.com/negocios-forms/core/internal/pkg/nativelog"
)

func applyRuntimeSettings(cfg *config.AppConfig) error {
	_ = os.Setenv(nativelog.EnvLogDir, cfg.LogDir())

	if cfg.Timezone == "" {
		return nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	time.Local = loc
	_ = os.Setenv("TZ", cfg.Timezone)
	return nil
}

// uptime rounds d down to the largest unit that is still meaningful.
func uptime(d time.Duration) string {
	for _, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute} {
		if d >= unit {
			return d.Truncate(unit).String()
		}
	}
	return d.Truncate(time.Second).String()
}
