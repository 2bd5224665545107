// Package names канонизация названий упражнений: ключ для сравнения,
// отображаемая форма и классификация (гантели / основное движение со штангой).
package names

import (
	"regexp"
	"sort"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^a-z0-9а-яё ]+`)
	wsRe    = regexp.MustCompile(`\s+`)
)

// canonicalDisplay известные канонические написания по ключу сравнения
var canonicalDisplay = map[string]string{
	"bench press":              "Bench Press",
	"back squat":               "Back Squat",
	"front squat":              "Front Squat",
	"deadlift":                 "Deadlift",
	"romanian deadlift":        "Romanian Deadlift",
	"rdl":                      "Romanian Deadlift",
	"overhead press":           "Overhead Press",
	"ohp":                      "Overhead Press",
	"barbell row":              "Barbell Row",
	"db bench press":           "DB Bench Press",
	"dumbbell bench press":     "DB Bench Press",
	"db row":                   "DB Row",
	"dumbbell row":             "DB Row",
	"db shoulder press":        "DB Shoulder Press",
	"dumbbell shoulder press":  "DB Shoulder Press",
	"db lateral raise":         "DB Lateral Raise",
	"dumbbell lateral raise":   "DB Lateral Raise",
	"db curl":                  "DB Curl",
	"dumbbell curl":            "DB Curl",
	"goblet squat":             "Goblet Squat",
	"bulgarian split squat":    "Bulgarian Split Squat",
	"db bulgarian split squat": "DB Bulgarian Split Squat",
	"pull up":                  "Pull-Up",
	"pullup":                   "Pull-Up",
	"chin up":                  "Chin-Up",
	"chinup":                   "Chin-Up",
	"lat pulldown":             "Lat Pulldown",
	"farmer carry":             "Farmer Carry",
	"farmers carry":            "Farmer Carry",
}

// mainLifts основные движения со штангой (ключи сравнения).
// На них не распространяется правило чётной нагрузки гантелей
var mainLifts = map[string]bool{
	"back squat":        true,
	"front squat":       true,
	"bench press":       true,
	"deadlift":          true,
	"romanian deadlift": true,
	"overhead press":    true,
	"barbell row":       true,
}

// Key возвращает ключ сравнения: нижний регистр, без пунктуации,
// схлопнутые пробелы
func Key(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctRe.ReplaceAllString(s, " ")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Display возвращает каноническую отображаемую форму, если она
// известна, иначе исходное название без крайних пробелов
func Display(name string) string {
	if d, ok := canonicalDisplay[Key(name)]; ok {
		return d
	}
	return strings.TrimSpace(name)
}

// IsDumbbell определяет гантельное упражнение по ключу
func IsDumbbell(name string) bool {
	key := Key(name)
	if strings.Contains(key, "dumbbell") || strings.Contains(key, "goblet") {
		return true
	}
	for _, tok := range strings.Fields(key) {
		if tok == "db" {
			return true
		}
	}
	return false
}

// IsMainLift определяет основное движение со штангой
func IsMainLift(name string) bool {
	return mainLifts[Key(name)]
}

// Same сравнивает названия по каноническому ключу
func Same(a, b string) bool {
	return Key(a) == Key(b)
}

// AliasedKey возвращает ключ сравнения после подстановки алиасов.
// Алиасы применяются регистронезависимой подстрочной заменой,
// длинные ключи раньше коротких. Починка и обе проверки сравнивают
// названия через один и тот же ключ
func AliasedKey(name string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return Key(name)
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(k))
		name = re.ReplaceAllString(name, aliases[k])
	}
	return Key(name)
}
