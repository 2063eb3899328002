package aggregate

import (
	"testing"

	"kdrama-dashboard/internal/dataset"
)

func testDataset() *dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Title: "Goblin", Year: 2016, HasYear: true, Genres: []string{"Fantasy", "Romance"}},
		{Title: "The King: Eternal Monarch", Year: 2020, HasYear: true, Genres: []string{"Fantasy", "Romance"}},
		{Title: "Kingdom", Year: 2019, HasYear: true, Genres: []string{"Thriller", "Horror"}},
		{Title: "Crash Landing on You", Year: 2019, HasYear: true, Genres: []string{"Romance", "Comedy"}},
		{Title: "Signal", Genres: []string{"Thriller", "Crime"}},
	})
}

func TestCountsByYearSkipsMissingYears(t *testing.T) {
	counts := CountsByYear(testDataset())
	if len(counts) != 3 {
		t.Fatalf("expected 3 years, got %v", counts)
	}
	if counts[2019] != 2 || counts[2016] != 1 || counts[2020] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	sorted := SortedYearCounts(counts)
	if sorted[0].Year != 2016 || sorted[1].Year != 2019 || sorted[2].Year != 2020 {
		t.Fatalf("SortedYearCounts not ascending: %+v", sorted)
	}
}

func TestTopGenresOrdersByFrequencyThenFirstSeen(t *testing.T) {
	got := TopGenres(testDataset(), 4)
	want := []TagCount{
		{Tag: "Romance", Count: 3},
		{Tag: "Fantasy", Count: 2},
		{Tag: "Thriller", Count: 2},
		{Tag: "Horror", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("TopGenres returned %d entries, want %d: %+v", len(got), len(want), got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("TopGenres[%d] = %+v, want %+v", idx, got[idx], want[idx])
		}
	}
}

func TestTopGenresNonPositiveKReturnsAll(t *testing.T) {
	if got := TopGenres(testDataset(), 0); len(got) != 6 {
		t.Fatalf("expected all 6 tags, got %+v", got)
	}
}

func TestTopTitleWordsFoldsCaseAndDropsStopWords(t *testing.T) {
	got := TopTitleWords(testDataset(), 0)
	seen := make(map[string]int, len(got))
	for _, entry := range got {
		seen[entry.Tag] = entry.Count
	}

	if seen["king"] != 1 || seen["kingdom"] != 1 || seen["goblin"] != 1 {
		t.Fatalf("unexpected word counts: %+v", got)
	}
	for _, stop := range []string{"the", "on", "you"} {
		if _, ok := seen[stop]; ok {
			t.Fatalf("stop word %q should be dropped: %+v", stop, got)
		}
	}
}
