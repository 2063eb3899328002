// Package dataset exposes the read-only series table the dashboard and the
// quiz are built on.
package dataset

import (
	"errors"
	"sort"
	"strings"
)

var ErrEmptyDataset = errors.New("dataset has no records with a title and episode count")

// Rand is the random source used for sampling. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// Record is one series row. Year and episode count may be missing in the
// source file; HasYear and HasEpisodes report whether they were present.
type Record struct {
	Title       string   `json:"title"`
	Year        int      `json:"year_of_release,omitempty"`
	HasYear     bool     `json:"-"`
	Genre       string   `json:"genre"`
	Genres      []string `json:"-"`
	Episodes    int      `json:"number_of_episodes,omitempty"`
	HasEpisodes bool     `json:"-"`
}

// Playable reports whether the record can back a quiz challenge.
func (r Record) Playable() bool {
	return r.HasEpisodes && strings.TrimSpace(r.Title) != ""
}

type Dataset struct {
	records  []Record
	playable []Record
}

func New(records []Record) *Dataset {
	all := make([]Record, len(records))
	copy(all, records)

	playable := make([]Record, 0, len(all))
	for _, record := range all {
		if record.Playable() {
			playable = append(playable, record)
		}
	}

	return &Dataset{
		records:  all,
		playable: playable,
	}
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns every row in file order, including incomplete ones.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// AllWithEpisodes returns the rows that have both a title and an episode count.
func (d *Dataset) AllWithEpisodes() []Record {
	out := make([]Record, len(d.playable))
	copy(out, d.playable)
	return out
}

// SampleOne picks a playable record uniformly at random.
func (d *Dataset) SampleOne(rng Rand) (Record, error) {
	if len(d.playable) == 0 {
		return Record{}, ErrEmptyDataset
	}
	return d.playable[rng.IntN(len(d.playable))], nil
}

func (d *Dataset) FilterByYear(year int) []Record {
	out := make([]Record, 0)
	for _, record := range d.records {
		if record.HasYear && record.Year == year {
			out = append(out, record)
		}
	}
	return out
}

// DistinctYears lists every known release year in ascending order.
func (d *Dataset) DistinctYears() []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, record := range d.records {
		if !record.HasYear {
			continue
		}
		if _, ok := seen[record.Year]; ok {
			continue
		}
		seen[record.Year] = struct{}{}
		years = append(years, record.Year)
	}
	sort.Ints(years)
	return years
}
