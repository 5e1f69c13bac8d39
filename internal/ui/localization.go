package ui

import (
	"strings"

	"golang.org/x/text/language"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle       = "app_title"
	KeyNoData         = "no_data"
	KeyNoName         = "no_name"
	KeyFlagAlt        = "flag_alt"
	KeyFlagNotLoaded  = "flag_not_loaded"
	KeyDataLoadError  = "data_load_error"
	KeyNext           = "next"
	KeyPrevious       = "previous"
	KeyTrackCounter   = "track_counter"
	KeyLanguage       = "language"
	KeyView           = "view"
	KeyResetView      = "reset_view"
	KeyReloadMap      = "reload_map"
	KeyPlayerMenu     = "player_menu"
	KeyTogglePlayback = "toggle_playback"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "ru",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// supportedTags lists the translated languages, the first one is the fallback
var supportedTags = []language.Tag{language.Russian, language.English}

var languageMatcher = language.NewMatcher(supportedTags)

// SetLanguage sets the current language. Accepts plain codes ("en") and
// locale strings ("en_US.UTF-8"); unknown languages are ignored.
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
		return
	}
	if code, ok := matchLanguage(lang); ok {
		if _, exists := l.texts[code]; exists {
			l.currentLanguage = code
		}
	}
}

func matchLanguage(locale string) (string, bool) {
	locale, _, _ = strings.Cut(locale, ".")
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", false
	}
	_, idx, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	base, _ := supportedTags[idx].Base()
	return base.String(), true
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to Russian, the language of the map data
	if texts, exists := l.texts["ru"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["ru"] = map[string]string{
		KeyAppTitle:       "Кавказ",
		KeyNoData:         "Нет данных",
		KeyNoName:         "Нет названия",
		KeyFlagAlt:        "Флаг",
		KeyFlagNotLoaded:  "Флаг не загружен",
		KeyDataLoadError:  "Ошибка загрузки данных",
		KeyNext:           "Следующий трек",
		KeyPrevious:       "Предыдущий трек",
		KeyTrackCounter:   "%d / %d",
		KeyLanguage:       "Язык",
		KeyView:           "Вид",
		KeyResetView:      "Сбросить вид",
		KeyReloadMap:      "Обновить карту",
		KeyPlayerMenu:     "Плеер",
		KeyTogglePlayback: "Играть / пауза",
	}

	l.texts["en"] = map[string]string{
		KeyAppTitle:       "Caucasus",
		KeyNoData:         "No data",
		KeyNoName:         "No name",
		KeyFlagAlt:        "Flag",
		KeyFlagNotLoaded:  "Flag not loaded",
		KeyDataLoadError:  "Data loading error",
		KeyNext:           "Next track",
		KeyPrevious:       "Previous track",
		KeyTrackCounter:   "%d / %d",
		KeyLanguage:       "Language",
		KeyView:           "View",
		KeyResetView:      "Reset view",
		KeyReloadMap:      "Reload map",
		KeyPlayerMenu:     "Player",
		KeyTogglePlayback: "Play / pause",
	}
}
