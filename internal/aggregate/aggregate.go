// Package aggregate computes the stateless dashboard views: releases per
// year, the most frequent genre tags, and title word frequencies for the
// word cloud.
package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kdrama-dashboard/internal/dataset"
)

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountsByYear groups records by release year. Records without a year are
// skipped.
func CountsByYear(ds *dataset.Dataset) map[int]int {
	counts := make(map[int]int)
	for _, record := range ds.Records() {
		if record.HasYear {
			counts[record.Year]++
		}
	}
	return counts
}

// SortedYearCounts orders a CountsByYear result by ascending year.
func SortedYearCounts(counts map[int]int) []YearCount {
	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}

// TopGenres returns the k most frequent genre tags, most frequent first.
// Equal counts keep the order in which the tags were first seen. k <= 0
// returns every tag.
func TopGenres(ds *dataset.Dataset, k int) []TagCount {
	counter := newTagCounter()
	for _, record := range ds.Records() {
		for _, genre := range record.Genres {
			counter.add(genre)
		}
	}
	return counter.top(k)
}

// TopTitleWords counts case-folded title words, ignoring short words and
// common English stop words.
func TopTitleWords(ds *dataset.Dataset, k int) []TagCount {
	lower := cases.Lower(language.Und)
	counter := newTagCounter()
	for _, record := range ds.Records() {
		for _, word := range titleWords(lower.String(record.Title)) {
			counter.add(word)
		}
	}
	return counter.top(k)
}

func titleWords(title string) []string {
	fields := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, "'")
		if len([]rune(field)) < 2 {
			continue
		}
		if _, skip := stopWords[field]; skip {
			continue
		}
		words = append(words, field)
	}
	return words
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "in": {}, "on": {}, "to": {},
	"is": {}, "my": {}, "me": {}, "you": {}, "your": {}, "for": {}, "at": {}, "with": {},
	"it": {}, "its": {}, "we": {}, "our": {}, "be": {}, "by": {}, "from": {},
}

type tagCounter struct {
	counts map[string]int
	order  []string
}

func newTagCounter() *tagCounter {
	return &tagCounter{counts: make(map[string]int)}
}

func (c *tagCounter) add(tag string) {
	if _, ok := c.counts[tag]; !ok {
		c.order = append(c.order, tag)
	}
	c.counts[tag]++
}

func (c *tagCounter) top(k int) []TagCount {
	out := make([]TagCount, 0, len(c.order))
	for _, tag := range c.order {
		out = append(out, TagCount{Tag: tag, Count: c.counts[tag]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
