// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

//go:embed locales/*.json
var embedded embed.FS

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance = newBundled()

// newBundled loads the locale files compiled into the binary. It cannot
// fail unless the embedded files are malformed, which tests catch.
func newBundled() *I18n {
	i := &I18n{translations: make(map[string]map[string]string), defaultLang: "en"}
	sub, _ := fs.Sub(embedded, "locales")
	_ = i.LoadTranslations(sub)
	return i
}

// Initialize replaces the bundled catalog with the locale files found in
// localesPath when that directory exists.
func Initialize(localesPath, defaultLang string) error {
	i := newBundled()
	if defaultLang != "" {
		i.defaultLang = defaultLang
	}
	if localesPath != "" {
		if info, err := os.Stat(localesPath); err == nil && info.IsDir() {
			if err := i.LoadTranslations(os.DirFS(localesPath)); err != nil {
				return err
			}
		}
	}
	instance = i
	return nil
}

func (i *I18n) LoadTranslations(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return fmt.Errorf("failed to list locale files: %w", err)
	}

	for _, file := range files {
		lang := strings.TrimSuffix(path.Base(file), ".json")

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}

		i.mu.Lock()
		if i.translations[lang] == nil {
			i.translations[lang] = make(map[string]string, len(translations))
		}
		for k, v := range translations {
			i.translations[lang][k] = v
		}
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try to get translation for requested language
	if text, ok := i.lookup(lang, key); ok {
		return format(text, args)
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if text, ok := i.lookup(i.defaultLang, key); ok {
			return format(text, args)
		}
	}

	// Return key if no translation found
	return key
}

func (i *I18n) lookup(lang, key string) (string, bool) {
	translations, exists := i.translations[lang]
	if !exists {
		return "", false
	}
	text, exists := translations[key]
	return text, exists
}

func format(text string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (i *I18n) Supports(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.translations[lang]
	return ok
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	return instance.T(lang, key, args...)
}

func Supports(lang string) bool {
	return instance.Supports(lang)
}

func GetSupportedLanguages() []string {
	instance.mu.RLock()
	defer instance.mu.RUnlock()

	langs := make([]string, 0, len(instance.translations))
	for lang := range instance.translations {
		langs = append(langs, lang)
	}
	return langs
}
