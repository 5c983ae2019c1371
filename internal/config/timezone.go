package config

import (
	"fmt"
	"strings"
	"time"
)

// Location resolves Timezone, which is an IANA zone name or a fixed UTC
// offset such as "-06:00". An empty Timezone keeps time.Local.
func (c *AppConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if ref, err := time.Parse("-07:00", tz); err == nil {
		_, offset := ref.Zone()
		return time.FixedZone(tz, offset), nil
	}
	return nil, fmt.Errorf("invalid timezone %q: expect IANA zone (e.g. America/Mexico_City) or UTC offset (e.g. -06:00)", tz)
}
