// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// =============================================================================
// SETTINGS SCHEMA
// =============================================================================

// Settings is the full gentor option schema. Every option has a TOML and a
// JSON tag matching its name in the settings file.
type Settings struct {
	// Provider selects the chat backend: "openai" (any OpenAI-compatible
	// endpoint) or "ollama".
	Provider string `toml:"provider" json:"provider"`

	// Model is the model identifier sent with every request.
	Model string `toml:"model" json:"model"`

	// APIKey authenticates against the provider. Ollama ignores it.
	APIKey string `toml:"api_key" json:"api_key"`

	// BaseURL is the endpoint root, e.g. "https://api.openai.com/v1".
	BaseURL string `toml:"base_url" json:"base_url"`

	// Temperature controls sampling randomness. Valid range 0.0 to 2.0.
	Temperature float64 `toml:"temperature" json:"temperature"`

	// MaxTokens caps the response length. 0 leaves the cap to the provider.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`

	// SystemPrompt is prepended to every conversation.
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`

	// Stream enables token-by-token streaming. When false each request
	// completes in one round trip.
	Stream bool `toml:"stream" json:"stream"`

	// TimeoutSeconds bounds connection setup and non-streaming requests.
	// Streaming reads are bounded by cancellation, not by this timeout.
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`

	// WatchConfig enables reloading the settings file when it changes on
	// disk.
	WatchConfig bool `toml:"watch_config" json:"watch_config"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultSystemPrompt is the assistant persona used when the settings file
// does not override system_prompt.
const DefaultSystemPrompt = "You are Gentor, an expert coding assistant. " +
	"Help with programming tasks, code generation, debugging, and explanations. " +
	"Be concise and helpful."

// Validation bounds for numeric options.
const (
	minTemperature     = 0.0
	maxTemperature     = 2.0
	maxTokensLimit     = 131072
	minTimeoutSeconds  = 1
	maxTimeoutSeconds  = 3600
	defaultTimeoutSecs = 120
)

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		APIKey:         "sk-your-api-key",
		BaseURL:        "https://api.openai.com/v1",
		Temperature:    0.7,
		MaxTokens:      0,
		SystemPrompt:   DefaultSystemPrompt,
		Stream:         true,
		TimeoutSeconds: defaultTimeoutSecs,
		WatchConfig:    false,
	}
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// ValidationError reports a single option that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every option against its allowed type and range. All
// violations are collected so one pass reports every offending option.
func (s Settings) Validate() error {
	var errs ValidateErrors

	validProviders := map[string]bool{"openai": true, "ollama": true}
	if !validProviders[strings.ToLower(s.Provider)] {
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: openai, ollama", s.Provider),
		})
	}

	if strings.TrimSpace(s.Model) == "" {
		errs = append(errs, ValidationError{
			Field:   "model",
			Message: "must not be empty",
		})
	}

	if u, err := url.Parse(s.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an http(s) URL", s.BaseURL),
		})
	}

	if s.Temperature < minTemperature || s.Temperature > maxTemperature {
		errs = append(errs, ValidationError{
			Field:   "temperature",
			Message: fmt.Sprintf("must be between %.1f and %.1f, got %g", minTemperature, maxTemperature, s.Temperature),
		})
	}

	if s.MaxTokens < 0 || s.MaxTokens > maxTokensLimit {
		errs = append(errs, ValidationError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", maxTokensLimit, s.MaxTokens),
		})
	}

	if s.TimeoutSeconds < minTimeoutSeconds || s.TimeoutSeconds > maxTimeoutSeconds {
		errs = append(errs, ValidationError{
			Field:   "timeout_seconds",
			Message: fmt.Sprintf("must be between %d and %d seconds, got %d", minTimeoutSeconds, maxTimeoutSeconds, s.TimeoutSeconds),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET BY OPTION KEY
// =============================================================================

// Get retrieves an option value by its settings file key (e.g. "api_key")
// rendered as a string.
func (s *Settings) Get(key string) (string, error) {
	field, err := s.fieldByKey(key)
	if err != nil {
		return "", err
	}
	return formatFieldValue(field), nil
}

// Set assigns an option from its string form, converting to the option's
// type. A failure is reported as a ValidationError naming the option.
func (s *Settings) Set(key, value string) error {
	field, err := s.fieldByKey(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return ValidationError{Field: key, Message: "option is read-only"}
	}
	if err := setFieldValue(field, value); err != nil {
		return ValidationError{Field: key, Message: err.Error()}
	}
	return nil
}

// fieldByKey resolves a settings file key to its struct field.
func (s *Settings) fieldByKey(key string) (reflect.Value, error) {
	fieldName := normalizeFieldName(key)

	v := reflect.ValueOf(s).Elem()
	field := v.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, fieldName)
	})
	if !field.IsValid() {
		return reflect.Value{}, ValidationError{Field: key, Message: "unknown option"}
	}
	return field, nil
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from a string with type conversion.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil
	case reflect.Int, reflect.Int64:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %v", err)
		}
		field.SetInt(intVal)
		return nil
	case reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %v", err)
		}
		field.SetFloat(floatVal)
		return nil
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			field.SetBool(true)
		case "0", "false", "no", "off":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid boolean value: %q", value)
		}
		return nil
	}
	return fmt.Errorf("unsupported option type %s", field.Type())
}

// formatFieldValue renders a field value the way it is typed into the
// settings editor.
func formatFieldValue(field reflect.Value) string {
	switch field.Kind() {
	case reflect.String:
		return field.String()
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10)
	case reflect.Float64:
		return strconv.FormatFloat(field.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(field.Bool())
	}
	return fmt.Sprint(field.Interface())
}

// =============================================================================
// EDITOR METADATA
// =============================================================================

// Field describes one option for interactive editing.
type Field struct {
	Key    string // option name as written in the settings file
	Value  string // current value rendered as a string
	Secret bool   // true when the value should be masked in displays
	Help   string
}

// fieldSpecs pairs each canonical option key with its editor metadata.
// Order follows the settings file layout.
var fieldSpecs = []struct {
	key    string
	secret bool
	help   string
}{
	{"provider", false, "chat backend: openai or ollama"},
	{"model", false, "model identifier sent with every request"},
	{"api_key", true, "provider API key"},
	{"base_url", false, "endpoint root URL"},
	{"temperature", false, "sampling randomness, 0.0 to 2.0"},
	{"max_tokens", false, "response length cap, 0 for provider default"},
	{"system_prompt", false, "assistant persona prepended to every conversation"},
	{"stream", false, "stream tokens as they arrive"},
	{"timeout_seconds", false, "request timeout for connection setup"},
	{"watch_config", false, "reload the settings file when it changes on disk"},
}

// Keys returns every option key in settings file order.
func Keys() []string {
	keys := make([]string, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		keys[i] = spec.key
	}
	return keys
}

// Fields returns the option schema with current values for the settings
// editor.
func (s *Settings) Fields() []Field {
	fields := make([]Field, 0, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		value, err := s.Get(spec.key)
		if err != nil {
			continue
		}
		fields = append(fields, Field{
			Key:    spec.key,
			Value:  value,
			Secret: spec.secret,
			Help:   spec.help,
		})
	}
	return fields
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the settings.
//
// Supported environment variables:
//   - GENTOR_PROVIDER: overrides provider
//   - GENTOR_MODEL: overrides model
//   - GENTOR_API_KEY: overrides api_key
//   - GENTOR_BASE_URL: overrides base_url
//
// Overrides live in memory only; they reach the settings file only if the
// user saves afterwards.
func (s *Settings) ApplyEnvOverrides() {
	if provider := os.Getenv("GENTOR_PROVIDER"); provider != "" {
		s.Provider = provider
	}
	if model := os.Getenv("GENTOR_MODEL"); model != "" {
		s.Model = model
	}
	if key := os.Getenv("GENTOR_API_KEY"); key != "" {
		s.APIKey = key
	}
	if baseURL := os.Getenv("GENTOR_BASE_URL"); baseURL != "" {
		s.BaseURL = baseURL
	}
}

// =============================================================================
// REDACTION
// =============================================================================

// String returns a JSON rendering of the settings for debugging. The API
// key is redacted so dumps never leak it into logs or error output.
func (s Settings) String() string {
	safe := s
	if safe.APIKey != "" {
		safe.APIKey = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
