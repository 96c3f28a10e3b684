// Package lang holds the language wrapper that steers the backend's answer
// locale and the heuristic detecting conversation recall queries.
package lang

import (
	"fmt"

	"golang.org/x/text/language"
)

// Answer language names keyed by base language. English needs no wrapping
// and is deliberately absent.
var languageNames = map[language.Base]string{
	mustBase("de"): "German",
	mustBase("fr"): "French",
	mustBase("es"): "Spanish",
	mustBase("it"): "Italian",
	mustBase("pt"): "Portuguese",
	mustBase("nl"): "Dutch",
	mustBase("pl"): "Polish",
	mustBase("sv"): "Swedish",
	mustBase("da"): "Danish",
	mustBase("cs"): "Czech",
	mustBase("ro"): "Romanian",
	mustBase("tr"): "Turkish",
}

func mustBase(s string) language.Base {
	b, err := language.ParseBase(s)
	if err != nil {
		panic(fmt.Sprintf("invalid base language %q: %v", s, err))
	}
	return b
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(languageNames)+1)
	tags = append(tags, language.English) // first tag is the fallback
	for base := range languageNames {
		tags = append(tags, language.Make(base.String()))
	}
	return language.NewMatcher(tags)
}()

// WrapWithLanguageInstruction prefixes the query with an instruction that
// directs the backend to answer in the locale's language. Unknown or English
// locales return the query unchanged.
func WrapWithLanguageInstruction(query, locale string) string {
	if locale == "" {
		return query
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return query
	}
	matched, _, confidence := matcher.Match(tag)
	if confidence == language.No {
		return query
	}
	base, _ := matched.Base()
	name, ok := languageNames[base]
	if !ok {
		return query
	}
	return fmt.Sprintf("Answer in %s.\n\n%s", name, query)
}
