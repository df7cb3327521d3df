package config

import (
	"fmt"
	"os"
	"strings"
)

// RoutingConfig holds the keyword sets driving course-query classification.
// All phrases are matched case-insensitively as substrings of the user
// message. The sets are configuration data, not code: they can be replaced
// wholesale via environment variables (comma-separated lists).
type RoutingConfig struct {
	// ListTriggers ask for the full course catalog. Checked before any
	// course-name matching.
	ListTriggers []string

	// DescriptionTriggers select the course description field.
	DescriptionTriggers []string

	// PriceTriggers select the course price field.
	PriceTriggers []string

	// DurationTriggers select the course duration field.
	DurationTriggers []string

	// MinTokenLength is the minimum rune length of message tokens tried
	// against course names when no verbatim name matched.
	MinTokenLength int
}

// Default trigger phrases. Russian first (primary audience), English as a
// courtesy for mixed-language messages.
var (
	defaultListTriggers = []string{
		"какие курсы", "список курсов", "все курсы", "какие есть курсы",
		"перечень курсов", "что вы предлагаете",
		"list courses", "what courses", "available courses",
	}

	defaultDescriptionTriggers = []string{
		"описание", "расскажи", "про что", "о чем", "о чём", "чему учит",
		"description", "about",
	}

	defaultPriceTriggers = []string{
		"цена", "стоимость", "сколько стоит", "стоит",
		"price", "cost", "how much",
	}

	defaultDurationTriggers = []string{
		"длительность", "продолжительность", "длится",
		"сколько часов", "как долго",
		"duration", "how long",
	}
)

// DefaultMinTokenLength is the default token-length threshold for the
// fallback token scan in course classification.
const DefaultMinTokenLength = 4

// DefaultRoutingConfig returns the built-in keyword configuration.
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		ListTriggers:        defaultListTriggers,
		DescriptionTriggers: defaultDescriptionTriggers,
		PriceTriggers:       defaultPriceTriggers,
		DurationTriggers:    defaultDurationTriggers,
		MinTokenLength:      DefaultMinTokenLength,
	}
}

// loadRoutingConfig applies environment overrides to the defaults.
func loadRoutingConfig() RoutingConfig {
	cfg := DefaultRoutingConfig()
	cfg.ListTriggers = getListEnv(EnvListTriggers, cfg.ListTriggers)
	cfg.DescriptionTriggers = getListEnv(EnvDescriptionTriggers, cfg.DescriptionTriggers)
	cfg.PriceTriggers = getListEnv(EnvPriceTriggers, cfg.PriceTriggers)
	cfg.DurationTriggers = getListEnv(EnvDurationTriggers, cfg.DurationTriggers)
	cfg.MinTokenLength = getIntEnv(EnvMinTokenLength, cfg.MinTokenLength)
	return cfg
}

// Validate checks the routing configuration for usable values.
func (c *RoutingConfig) Validate() error {
	if c.MinTokenLength < 1 {
		return fmt.Errorf("min token length must be at least 1, got %d", c.MinTokenLength)
	}
	if len(c.ListTriggers) == 0 {
		return fmt.Errorf("list triggers must not be empty")
	}
	for _, group := range [][]string{
		c.ListTriggers, c.DescriptionTriggers, c.PriceTriggers, c.DurationTriggers,
	} {
		for _, phrase := range group {
			if strings.TrimSpace(phrase) == "" {
				return fmt.Errorf("trigger phrases must not be blank")
			}
		}
	}
	return nil
}

// getListEnv retrieves a comma-separated list environment variable with
// fallback to the default. Blank elements are dropped.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
