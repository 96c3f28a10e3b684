package lang

import (
	"strings"
	"testing"

	"github.com/juricore/juricore/internal/testutil"
)

func TestWrapWithLanguageInstruction_SupportedLocales(t *testing.T) {
	cases := map[string]string{
		"de":    "German",
		"de-AT": "German",
		"fr":    "French",
		"fr-CA": "French",
		"es":    "Spanish",
		"it":    "Italian",
		"pt-BR": "Portuguese",
		"nl":    "Dutch",
		"pl":    "Polish",
		"sv":    "Swedish",
		"da":    "Danish",
		"cs":    "Czech",
		"ro":    "Romanian",
		"tr":    "Turkish",
	}
	for locale, name := range cases {
		out := WrapWithLanguageInstruction("What is my notice period?", locale)
		if !strings.HasPrefix(out, "Answer in "+name+".") {
			t.Errorf("locale %s: expected %s instruction, got %q", locale, name, out)
		}
		if !strings.HasSuffix(out, "What is my notice period?") {
			t.Errorf("locale %s: query text lost: %q", locale, out)
		}
	}
}

func TestWrapWithLanguageInstruction_NoWrap(t *testing.T) {
	query := "What is my notice period?"
	for _, locale := range []string{"", "en", "en-US", "en-GB", "not-a-locale!!", "zz"} {
		if out := WrapWithLanguageInstruction(query, locale); out != query {
			t.Errorf("locale %q: expected unchanged query, got %q", locale, out)
		}
	}
}

func TestIsConversationRecallQuery(t *testing.T) {
	history := testutil.NewHistoryBuilder().User("q").Assistant("a").Build()

	recall := []string{
		"What did we discuss about the merger?",
		"what was my last question?",
		"Remind me what we discussed yesterday",
		"Summarize our conversation so far",
		"What did you just say?",
	}
	for _, q := range recall {
		if !IsConversationRecallQuery(q, history) {
			t.Errorf("expected recall query: %q", q)
		}
	}

	fresh := []string{
		"What is the statute of limitations for fraud?",
		"Summarize the attached judgment",
		"Can we discuss the new contract?",
	}
	for _, q := range fresh {
		if IsConversationRecallQuery(q, history) {
			t.Errorf("expected non-recall query: %q", q)
		}
	}
}

func TestIsConversationRecallQuery_EmptyHistory(t *testing.T) {
	if IsConversationRecallQuery("what did we discuss?", nil) {
		t.Fatal("recall must be false with no history")
	}
}
