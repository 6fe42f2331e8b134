package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ErrUnknownKey is returned for dotted keys that name no setting.
var ErrUnknownKey = errors.New("unknown config key")

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringKey(field func(*Config) *string) accessor {
	return accessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(field func(*Config) *bool) accessor {
	return accessor{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalid, v)
			}
			*field(c) = b
			return nil
		},
	}
}

var keys = map[string]accessor{
	"app.name":                  stringKey(func(c *Config) *string { return &c.App.Name }),
	"app.prompt":                stringKey(func(c *Config) *string { return &c.App.Prompt }),
	"completion.style":          stringKey(func(c *Config) *string { return &c.Completion.Style }),
	"completion.case_sensitive": boolKey(func(c *Config) *bool { return &c.Completion.CaseSensitive }),
	"completion.menu_rows": {
		get: func(c *Config) string { return strconv.Itoa(c.Completion.MenuRows) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", ErrInvalid, v)
			}
			c.Completion.MenuRows = n
			return nil
		},
	},
	"completion.handler_timeout": {
		get: func(c *Config) string { return c.Completion.HandlerTimeout.Std().String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a duration", ErrInvalid, v)
			}
			c.Completion.HandlerTimeout = Duration(d)
			return nil
		},
	},
	"ui.theme":     stringKey(func(c *Config) *string { return &c.UI.Theme }),
	"ui.no_color":  boolKey(func(c *Config) *bool { return &c.UI.NoColor }),
	"ui.highlight": boolKey(func(c *Config) *bool { return &c.UI.Highlight }),
	"log.level":    stringKey(func(c *Config) *string { return &c.Log.Level }),
	"log.file":     stringKey(func(c *Config) *string { return &c.Log.File }),
}

// Keys lists the settable dotted keys.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dotted key.
func (c *Config) Get(key string) (string, error) {
	a, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return a.get(c), nil
}

// Set assigns a dotted key and validates the result. On failure c is left
// unchanged.
func (c *Config) Set(key, value string) error {
	a, ok := keys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	next := *c
	if err := a.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
