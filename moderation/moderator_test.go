package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T) *Moderator {
	t.Helper()
	m, err := NewModerator([]string{"idiot", "moron"}, '*')
	require.NoError(t, err)
	return m
}

func TestModerator_Censors_Plain_Match(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t)

	req.Equal("you *****", m.Censor("you idiot"))
}

func TestModerator_Censors_Leet_Speak(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t)

	req.Equal("you *****", m.Censor("you 1d10t"))
}

func TestModerator_Censors_Despite_Casing_And_Punctuation(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t)

	req.Equal("***** and *********", m.Censor("IDIOT and m.o.r.o.n"))
}

func TestModerator_Leaves_Clean_Text_Untouched(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t)

	input := "a perfectly polite sentence"
	req.Equal(input, m.Censor(input))
}

func TestModerator_Empty_Input(t *testing.T) {
	req := require.New(t)
	m := newTestModerator(t)

	req.Equal("", m.Censor(""))
}

func TestLoadWordlist_Merges_Embedded_Languages(t *testing.T) {
	req := require.New(t)

	wordlist, err := LoadWordlist()

	req.NoError(err)
	req.NotEmpty(wordlist.Words)
	req.Contains(wordlist.Languages, "en")
	req.Contains(wordlist.Languages, "fr")
}

func TestDetectLanguage(t *testing.T) {
	req := require.New(t)

	req.Equal("English", DetectLanguage("this is clearly an english sentence about nothing"))
}
