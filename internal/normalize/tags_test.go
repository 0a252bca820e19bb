package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyTagsMatchesCaseInsensitiveSubstrings(t *testing.T) {
	rules := TagRules{
		"subtitled": {"[中文字幕]", "chinese sub"},
		"uncensored": {"uncensored", "無修正"},
	}
	tags := ClassifyTags("ABC-123 Uncensored 中文字幕 version", rules)
	require.Equal(t, []string{"subtitled", "uncensored"}, tags)
}

func TestClassifyTagsRuleContributesOnce(t *testing.T) {
	rules := TagRules{"hd": {"1080p", "2160p", "hd"}}
	tags := ClassifyTags("Title 1080p HD 2160p", rules)
	require.Equal(t, []string{"hd"}, tags)
}

func TestClassifyTagsIdempotent(t *testing.T) {
	rules := TagRules{"a": {"alpha"}, "b": {"beta"}}
	title := "alpha beta gamma"
	first := ClassifyTags(title, rules)
	second := ClassifyTags(title, rules)
	require.Equal(t, first, second)
}

func TestClassifyTagsNoMatchYieldsEmptySet(t *testing.T) {
	rules := TagRules{"a": {"alpha"}}
	require.Empty(t, ClassifyTags("nothing relevant", rules))
	require.Empty(t, ClassifyTags("", rules))
	require.Empty(t, ClassifyTags("alpha", nil))
}

func TestClassifyTagsStripsBracketsFromBothSides(t *testing.T) {
	rules := TagRules{"subtitled": {"【字幕】"}}
	require.Equal(t, []string{"subtitled"}, ClassifyTags("ABC-123 [字幕] edition", rules))
}
