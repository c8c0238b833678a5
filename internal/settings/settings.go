// Package settings stores the user's notification and display preferences in a local JSON file.
//
// The file is validated against an embedded JSON schema on every load and save.
package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed preferences.schema.json
var schemaJSON []byte

const schemaURL = "preferences.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing preferences schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding preferences schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// ErrUnknownKey is returned by Set for keys that are not preferences
var ErrUnknownKey = errors.New("unknown preference")

// Preferences are the user's notification and display settings
type Preferences struct {
	EmailNewOffers     bool `json:"email_nouvelles_offres"`
	EmailPriceAlerts   bool `json:"email_alertes_prix"`
	EmailConfirmations bool `json:"email_confirmations"`
	EmailReminders     bool `json:"email_rappels"`
	EmailNewsletter    bool `json:"email_newsletter"`

	PushNewOffers     bool `json:"push_nouvelles_offres"`
	PushPriceAlerts   bool `json:"push_alertes_prix"`
	PushConfirmations bool `json:"push_confirmations"`
	PushReminders     bool `json:"push_rappels"`

	Language   string `json:"langue"`
	Currency   string `json:"devise"`
	DateFormat string `json:"format_date"`
}

// Defaults returns the preferences of a new user
func Defaults() Preferences {
	return Preferences{
		EmailNewOffers:     true,
		EmailPriceAlerts:   true,
		EmailConfirmations: true,
		EmailReminders:     true,
		EmailNewsletter:    false,

		PushNewOffers:     false,
		PushPriceAlerts:   true,
		PushConfirmations: true,
		PushReminders:     true,

		Language:   "fr",
		Currency:   "FCFA",
		DateFormat: "DD/MM/YYYY",
	}
}

// Store reads and writes preferences at a file path
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved preferences, or the defaults when nothing was saved yet.
// Keys missing from the file keep their default value.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("reading preferences: %w", err)
	}

	if err := validate(data); err != nil {
		return prefs, fmt.Errorf("invalid preferences file %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Defaults(), fmt.Errorf("decoding preferences: %w", err)
	}
	return prefs, nil
}

// Save validates and atomically replaces the preferences file
func (s *Store) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := validate(data); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating preferences directory: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Set updates one preference by its json key. Toggles accept the values strconv.ParseBool does.
func (p Preferences) Set(key, value string) (Preferences, error) {
	fields, err := p.fields()
	if err != nil {
		return p, err
	}

	current, ok := fields[key]
	if !ok {
		return p, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if _, isBool := current.(bool); isBool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		fields[key] = b
	} else {
		fields[key] = value
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return p, err
	}
	if err := validate(data); err != nil {
		return p, err
	}

	var updated Preferences
	if err := json.Unmarshal(data, &updated); err != nil {
		return p, err
	}
	return updated, nil
}

// Keys lists the preference keys in alphabetical order
func Keys() []string {
	fields, _ := Defaults().fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Preferences) fields() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
