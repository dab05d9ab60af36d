package console

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// completer locates a partial word left of the cursor and names the
// candidates it may complete to. The pattern's last capture group is the
// word and must extend to the end of the input; a second-to-last group,
// when present, captures an earlier anchor token (e.g. the property name
// in "set <property> <value>").
type completer struct {
	pattern *regexp.Regexp
	fetch   func(ctx context.Context, client Client, anchor string) []string
	suffix  string
	// anchored patterns are retried after the most recent statement
	// separator so completion works mid-line.
	anchored bool
}

var completers = []completer{
	{
		pattern:  regexp.MustCompile(`^\s*([\w-]*)$`),
		fetch:    fetchCommandNames,
		suffix:   " ",
		anchored: true,
	},
	{
		pattern:  regexp.MustCompile(`^\s*help\s+([\w-]*)$`),
		fetch:    fetchCommandNames,
		anchored: true,
	},
	{
		pattern:  regexp.MustCompile(`^\s*(?:set|add|cycle|multiply)\s+([\w/-]*)$`),
		fetch:    fetchPropertyNames,
		suffix:   " ",
		anchored: true,
	},
	{
		pattern:  regexp.MustCompile(`^\s*(?:set|cycle-values)\s+([\w/-]+)\s+"?([\w-]*)$`),
		fetch:    fetchChoiceValues,
		anchored: true,
	},
	{
		pattern:  regexp.MustCompile(`^\s*apply-profile\s+"?([\w-]*)$`),
		fetch:    fetchProfileNames,
		anchored: true,
	},
	{
		pattern: regexp.MustCompile(`\$\{([\w/-]*)$`),
		fetch:   fetchPropertyNames,
		suffix:  "}",
	},
}

func fetchCommandNames(ctx context.Context, client Client, _ string) []string {
	defs, err := client.CommandList(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}

func fetchPropertyNames(ctx context.Context, client Client, _ string) []string {
	props, err := client.Properties(ctx)
	if err != nil {
		return nil
	}
	return props
}

func fetchChoiceValues(ctx context.Context, client Client, anchor string) []string {
	values, err := client.ChoiceValues(ctx, anchor)
	if err != nil {
		return nil
	}
	return values
}

func fetchProfileNames(ctx context.Context, client Client, _ string) []string {
	names, err := client.ProfileNames(ctx)
	if err != nil {
		return nil
	}
	return names
}

// completion is the outcome of one completion attempt against the text
// left of the cursor.
type completion struct {
	start       int      // byte offset where the partial word begins
	insert      string   // text replacing the partial word
	suggestions []string // all matches when the prefix was ambiguous
}

// completeLine attempts the completer table in priority order against
// before, the text left of the cursor. The first completer whose pattern
// matches decides the outcome; a match with zero candidates is a no-op.
func completeLine(ctx context.Context, client Client, before string) (completion, bool) {
	for _, comp := range completers {
		offsets := []int{0}
		if comp.anchored {
			if i := strings.LastIndexByte(before, ';'); i >= 0 {
				offsets = append(offsets, i+1)
			}
		}
		for _, off := range offsets {
			sub := before[off:]
			m := comp.pattern.FindStringSubmatchIndex(sub)
			if m == nil {
				continue
			}
			wordGroup := comp.pattern.NumSubexp()
			ws, we := m[2*wordGroup], m[2*wordGroup+1]
			if ws < 0 {
				continue
			}
			word := sub[ws:we]
			anchor := ""
			if wordGroup == 2 && m[2] >= 0 {
				anchor = sub[m[2]:m[3]]
			}
			matches := prefixMatches(word, comp.fetch(ctx, client, anchor))
			if len(matches) == 0 {
				return completion{}, false
			}
			sort.Strings(matches)
			result := completion{start: off + ws}
			if len(matches) == 1 {
				result.insert = matches[0] + comp.suffix
				return result, true
			}
			result.insert = commonPrefix(matches)
			result.suggestions = matches
			return result, true
		}
	}
	return completion{}, false
}

// prefixMatches returns the candidates that word is a byte-wise prefix of.
func prefixMatches(word string, candidates []string) []string {
	var matches []string
	for _, cand := range candidates {
		if strings.HasPrefix(cand, word) {
			matches = append(matches, cand)
		}
	}
	return matches
}

// commonPrefix extends the shared prefix byte by byte while all matches
// agree.
func commonPrefix(matches []string) string {
	if len(matches) == 0 {
		return ""
	}
	prefix := matches[0]
	for _, m := range matches[1:] {
		n := len(prefix)
		if len(m) < n {
			n = len(m)
		}
		i := 0
		for i < n && prefix[i] == m[i] {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}
