// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail delivers a finished report over SMTP with STARTTLS.
package mail

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment keys the mail configuration is read from.
const (
	KeyHost     = "SMTP_HOST"
	KeyPort     = "SMTP_PORT"
	KeyUser     = "SMTP_USER"
	KeyPassword = "SMTP_PASS"
	KeyFrom     = "SMTP_FROM"
	KeyTo       = "REPORT_EMAIL_TO"
)

// Config is the resolved SMTP configuration for one run.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Addr returns host:port for dialing.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// MissingConfigError reports a required key with no value.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return "missing configuration: " + e.Key
}

// LookupFunc resolves a configuration key. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadConfig resolves every mail key through lookup. The first key without a
// value produces a *MissingConfigError.
func LoadConfig(lookup LookupFunc) (Config, error) {
	var c Config
	var port string

	fields := []struct {
		key string
		dst *string
	}{
		{KeyHost, &c.Host},
		{KeyPort, &port},
		{KeyUser, &c.Username},
		{KeyPassword, &c.Password},
		{KeyFrom, &c.From},
		{KeyTo, &c.To},
	}
	for _, f := range fields {
		v, ok := lookup(f.key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return Config{}, &MissingConfigError{Key: f.key}
		}
		*f.dst = v
	}

	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return Config{}, fmt.Errorf("invalid %s %q", KeyPort, port)
	}
	c.Port = p
	return c, nil
}
