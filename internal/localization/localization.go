// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and resolves the request language
// from the Accept-Language header.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"complaintdesk/backend/internal/models"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing in Accept-Language is supported.
const DefaultLanguage = "en"

// Keys of user-visible notices.
const (
	NoticeComplaintCreated = "notice.complaint_created"
	NoticeEmergencyCreated = "notice.emergency_created"
	NoticeComplaintUpdated = "notice.complaint_updated"
	NoticeMessageSent      = "notice.message_sent"
	NoticeRegistered       = "notice.registered"
	NoticeLoginSuccess     = "notice.login_success"
	NoticeAdminLogin       = "notice.admin_login_success"
	NoticeCleanupDone      = "notice.cleanup_done"
)

//go:embed locales/*.json
var embedded embed.FS

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	matcher      language.Matcher
	languages    []string
	mu           sync.RWMutex
}

// New returns a Localizer over the translations compiled into the binary.
func New() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return NewLocalizer(sub)
}

// NewLocalizer loads every <lang>.json file at the root of fsys.
func NewLocalizer(fsys fs.FS) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || path.Ext(file.Name()) != ".json" {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	if _, ok := l.translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("missing %s translations", DefaultLanguage)
	}

	// the default language goes first so the matcher falls back to it
	l.languages = append(l.languages, DefaultLanguage)
	others := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		if lang != DefaultLanguage {
			others = append(others, lang)
		}
	}
	sort.Strings(others)
	l.languages = append(l.languages, others...)

	tags := make([]language.Tag, 0, len(l.languages))
	for _, lang := range l.languages {
		tags = append(tags, language.Make(lang))
	}
	l.matcher = language.NewMatcher(tags)

	return l, nil
}

// Languages returns the loaded language codes, default first.
func (l *Localizer) Languages() []string {
	return append([]string(nil), l.languages...)
}

// Language picks the best supported language for an Accept-Language header.
func (l *Localizer) Language(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return l.languages[idx]
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	// Fallback to a default language if the key is not found in the specified language
	if lang != DefaultLanguage {
		if enTranslations, ok := l.translations[DefaultLanguage]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

func (l *Localizer) CategoryLabel(lang string, c models.Category) string {
	return l.GetString(lang, "category."+string(c))
}

func (l *Localizer) StatusLabel(lang string, s models.Status) string {
	return l.GetString(lang, "status."+string(s))
}

// Labels returns display labels for every category and status.
func (l *Localizer) Labels(lang string) map[string]map[string]string {
	categories := make(map[string]string, len(models.Categories()))
	for _, c := range models.Categories() {
		categories[string(c)] = l.CategoryLabel(lang, c)
	}
	statuses := make(map[string]string, len(models.Statuses()))
	for _, s := range models.Statuses() {
		statuses[string(s)] = l.StatusLabel(lang, s)
	}
	return map[string]map[string]string{
		"categories": categories,
		"statuses":   statuses,
	}
}
