package catalog_test

import (
	"testing"

	"quill/internal/catalog"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Green Tea Lady", "green-tea-lady"},
		{"  Green   Tea  Lady  ", "green-tea-lady"},
		{"Crème Brûlée!", "creme-brulee"},
		{"Sword of Destiny: Reborn (2)", "sword-of-destiny-reborn-2"},
		{"!!!", "untitled"},
		{"", "untitled"},
		{"Already-Slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := catalog.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := catalog.NormalizeTitle("  Green Tea LADY "); got != "green tea lady" {
		t.Fatalf("NormalizeTitle = %q", got)
	}
}

func TestParseNovelStatus(t *testing.T) {
	cases := map[string]catalog.NovelStatus{
		"Ongoing":   catalog.NovelOngoing,
		"COMPLETED": catalog.NovelCompleted,
		"finished":  catalog.NovelCompleted,
		"hiatus":    catalog.NovelUnknown,
		"":          catalog.NovelUnknown,
	}
	for in, want := range cases {
		if got := catalog.ParseNovelStatus(in); got != want {
			t.Errorf("ParseNovelStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
