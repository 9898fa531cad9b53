package match_test

import (
	"testing"

	"github.com/codekaffe/sensum/internal/match"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  lots\t of \n whitespace  ", "lots of whitespace"},
		{"DON'T", "dont"},
		{"", ""},
	}
	for _, c := range cases {
		if got := match.Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWordBoundary(t *testing.T) {
	if !match.Match("yes please", match.P("yes")) {
		t.Fatal("expected \"yes please\" to match token \"yes\"")
	}
	if match.Match("yesterday", match.P("yes")) {
		t.Fatal("expected \"yesterday\" not to match token \"yes\"")
	}
	if !match.Match("well, YES!", match.P("yes")) {
		t.Fatal("expected punctuation and case to be normalized away")
	}
}

func TestPhraseToken(t *testing.T) {
	if !match.Match("so how are you doing", match.P("how are you")) {
		t.Fatal("expected phrase token to match")
	}
	if match.Match("how fare you", match.P("how are you")) {
		t.Fatal("expected non-contiguous words not to match a phrase token")
	}
}

func TestMultiTokenAllMustMatch(t *testing.T) {
	p := match.P("free", "nitro")
	if !match.Match("get your free discord nitro now", p) {
		t.Fatal("expected both tokens present to match")
	}
	if match.Match("free as in beer", p) {
		t.Fatal("expected missing token to fail the pattern")
	}
}

func TestVocabularyClasses(t *testing.T) {
	for _, text := range []string{"yeah", "sure thing", "sounds good to me", "okay then"} {
		if !match.Match(text, match.P("affirmation")) {
			t.Fatalf("expected %q to match the affirmation class", text)
		}
	}
	if match.Match("yessir", match.P("affirmation")) {
		t.Fatal("class tokens are still boundary-matched")
	}
	if !match.Match("nah im good", match.P("negation")) {
		t.Fatal("expected negation class match")
	}
	if !match.Match("i want to sleep", match.P("intent")) {
		t.Fatal("expected intent class match")
	}
	if !match.Match("can i get a hug", match.P("intent")) {
		t.Fatal("expected intent class match for question phrasing")
	}
}

func TestEmptyPattern(t *testing.T) {
	if match.Match("anything", match.Pattern{}) {
		t.Fatal("empty pattern must not match")
	}
}
