package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-translator/domain/speech"
)

// Errors for config management
var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrCCNotFound        = errors.New("cc not found")
	ErrDuplicateKey      = errors.New("key already exists")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrUnknownKey        = errors.New("unknown config key")
	ErrInvalidValue      = errors.New("invalid config value")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Recipient represents a recipient entry (used for both recipients and CCs)
type Recipient struct {
	Key     string
	Name    string
	Address string
	Default bool // mailed when --notify is given without names
}

// --- Scalar settings ---

// setter parses value into the config field it is registered for
type setter func(cfg *Config, value string) error

var setters = map[string]setter{
	"models.transcription": func(c *Config, v string) error { c.Models.Transcription = v; return nil },
	"models.translation":   func(c *Config, v string) error { c.Models.Translation = v; return nil },
	"prompt": func(c *Config, v string) error {
		if _, err := speech.ParsePromptTemplate(v); err != nil {
			return err
		}
		c.Prompt = v
		return nil
	},
	"prompt_file":                 func(c *Config, v string) error { c.PromptFile = v; return nil },
	"language":                    func(c *Config, v string) error { c.Language = v; return nil },
	"translation.provider":        func(c *Config, v string) error { c.Translation.Provider = strings.ToLower(v); return nil },
	"api.base_url":                func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	"api.timeout":                 durationSetter(func(c *Config) *time.Duration { return &c.API.Timeout }),
	"api.max_retries":             intSetter(func(c *Config) *int { return &c.API.MaxRetries }),
	"api.requests_per_minute":     intSetter(func(c *Config) *int { return &c.API.RequestsPerMinute }),
	"performance.workers":         intSetter(func(c *Config) *int { return &c.Performance.Workers }),
	"audio.sample_rate":           intSetter(func(c *Config) *int { return &c.Audio.SampleRate }),
	"audio.channels":              intSetter(func(c *Config) *int { return &c.Audio.Channels }),
	"audio.ffmpeg_path":           func(c *Config, v string) error { c.Audio.FFmpegPath = v; return nil },
	"audio.ffprobe_path":          func(c *Config, v string) error { c.Audio.FFprobePath = v; return nil },
	"audio.temp_dir":              func(c *Config, v string) error { c.Audio.TempDir = v; return nil },
	"paths.output_directory":      func(c *Config, v string) error { c.Paths.OutputDirectory = v; return nil },
	"logging.level":               func(c *Config, v string) error { c.Logging.Level = v; return nil },
	"logging.file":                func(c *Config, v string) error { c.Logging.File = v; return nil },
	"google.credentials_file":     func(c *Config, v string) error { c.Google.CredentialsFile = v; return nil },
	"google.token_file":           func(c *Config, v string) error { c.Google.TokenFile = v; return nil },
	"google.results_folder_id":    func(c *Config, v string) error { c.Google.ResultsFolderID = v; return nil },
	"email.from_name":             func(c *Config, v string) error { c.Email.FromName = v; return nil },
	"email.from_address": func(c *Config, v string) error {
		if !isValidEmail(v) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, v)
		}
		c.Email.FromAddress = v
		return nil
	},
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}
		*field(c) = n
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not a duration (e.g. 90s)", ErrInvalidValue, v)
		}
		*field(c) = d
		return nil
	}
}

// SettableKeys returns the dotted keys accepted by Set, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a scalar setting by dotted key, validates the result and saves it.
// The in-memory config is left unchanged when validation fails.
func (m *ConfigManager) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	updated := *m.config
	if err := set(&updated, value); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// --- Recipient CRUD ---

// AddRecipient adds a new recipient to config
func (m *ConfigManager) AddRecipient(key, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if key == "" {
		return fmt.Errorf("recipient key is required")
	}
	if name == "" {
		return fmt.Errorf("recipient name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if m.config.Email.Recipients == nil {
		m.config.Email.Recipients = make(map[string]RecipientConfig)
	}

	if _, exists := m.config.Email.Recipients[key]; exists {
		return fmt.Errorf("%w: recipient %q", ErrDuplicateKey, key)
	}

	m.config.Email.Recipients[key] = RecipientConfig{Name: name, Address: email}
	return Save(m.config, m.configPath)
}

// ListRecipients returns all recipients sorted by key
func (m *ConfigManager) ListRecipients() []Recipient {
	defaults := make(map[string]bool, len(m.config.Email.DefaultRecipients))
	for _, k := range m.config.Email.DefaultRecipients {
		defaults[strings.ToLower(k)] = true
	}

	result := make([]Recipient, 0, len(m.config.Email.Recipients))
	for key, rc := range m.config.Email.Recipients {
		result = append(result, Recipient{
			Key:     key,
			Name:    rc.Name,
			Address: rc.Address,
			Default: defaults[key],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetRecipient gets a recipient by key (case-insensitive)
func (m *ConfigManager) GetRecipient(key string) (Recipient, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if rc, exists := m.config.Email.Recipients[key]; exists {
		return Recipient{Key: key, Name: rc.Name, Address: rc.Address}, nil
	}
	return Recipient{}, fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
}

// RemoveRecipient removes a recipient by key, dropping it from the defaults too
func (m *ConfigManager) RemoveRecipient(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, exists := m.config.Email.Recipients[key]; !exists {
		return fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
	}

	delete(m.config.Email.Recipients, key)
	m.config.Email.DefaultRecipients = removeKey(m.config.Email.DefaultRecipients, key)
	return Save(m.config, m.configPath)
}

// UpdateRecipient updates a recipient's name and/or email
func (m *ConfigManager) UpdateRecipient(key, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	rc, exists := m.config.Email.Recipients[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
	}

	if name = strings.TrimSpace(name); name != "" {
		rc.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		if !isValidEmail(email) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		rc.Address = email
	}

	m.config.Email.Recipients[key] = rc
	return Save(m.config, m.configPath)
}

// SetDefaultRecipient marks or unmarks a recipient as a default summary recipient
func (m *ConfigManager) SetDefaultRecipient(key string, isDefault bool) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, exists := m.config.Email.Recipients[key]; !exists {
		return fmt.Errorf("%w: %q", ErrRecipientNotFound, key)
	}

	list := removeKey(m.config.Email.DefaultRecipients, key)
	if isDefault {
		list = append(list, key)
	}
	m.config.Email.DefaultRecipients = list
	return Save(m.config, m.configPath)
}

func removeKey(keys []string, key string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if !strings.EqualFold(k, key) {
			out = append(out, k)
		}
	}
	return out
}

// --- CC CRUD ---

// AddCC adds a new default CC recipient. CCs are keyed by lower-case first name.
func (m *ConfigManager) AddCC(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return fmt.Errorf("cc name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if _, _, err := m.GetCC(ccKey(name)); err == nil {
		return fmt.Errorf("%w: cc %q", ErrDuplicateKey, ccKey(name))
	}

	m.config.Email.DefaultCC = append(m.config.Email.DefaultCC, RecipientConfig{
		Name:    name,
		Address: email,
	})
	return Save(m.config, m.configPath)
}

// ListCCs returns all default CC recipients in file order
func (m *ConfigManager) ListCCs() []Recipient {
	result := make([]Recipient, 0, len(m.config.Email.DefaultCC))
	for i, cc := range m.config.Email.DefaultCC {
		key := ccKey(cc.Name)
		if key == "" {
			key = fmt.Sprintf("cc%d", i)
		}
		result = append(result, Recipient{Key: key, Name: cc.Name, Address: cc.Address})
	}
	return result
}

// GetCC gets a CC by first name or full name, case-insensitive
func (m *ConfigManager) GetCC(key string) (Recipient, int, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, cc := range m.config.Email.DefaultCC {
		if ccKey(cc.Name) == key || strings.ToLower(cc.Name) == key {
			return Recipient{Key: ccKey(cc.Name), Name: cc.Name, Address: cc.Address}, i, nil
		}
	}
	return Recipient{}, -1, fmt.Errorf("%w: %q", ErrCCNotFound, key)
}

// RemoveCC removes a CC by key
func (m *ConfigManager) RemoveCC(key string) error {
	_, idx, err := m.GetCC(key)
	if err != nil {
		return err
	}

	m.config.Email.DefaultCC = append(
		m.config.Email.DefaultCC[:idx],
		m.config.Email.DefaultCC[idx+1:]...,
	)
	return Save(m.config, m.configPath)
}

// UpdateCC updates an existing CC. Empty values keep the current ones.
func (m *ConfigManager) UpdateCC(key, name, email string) error {
	_, idx, err := m.GetCC(key)
	if err != nil {
		return err
	}

	cc := m.config.Email.DefaultCC[idx]
	if name = strings.TrimSpace(name); name != "" {
		cc.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		if !isValidEmail(email) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		cc.Address = email
	}
	m.config.Email.DefaultCC[idx] = cc
	return Save(m.config, m.configPath)
}

func ccKey(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	atIdx := strings.Index(email, "@")
	if atIdx < 1 {
		return false
	}
	domain := email[atIdx+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// SuggestAddRecipientCommand returns the command to add a missing recipient
func SuggestAddRecipientCommand(key string) string {
	return fmt.Sprintf(`video-translator config add recipient --key %s --name "Recipient Name" --email "email@example.com"`, key)
}
