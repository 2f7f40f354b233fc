package plugin

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/pagedeck/internal/session"
)

func TestRecommendScoring(t *testing.T) {
	root := t.TempDir()
	// Name and tag both mention glow: 10 + 8 = 18.
	writePackage(t, root, "glow",
		manifestWith("glow-effect", "Glow Effect", "Adds a soft halo to elements",
			"visual-effects", []string{"glow", "highlight"}), `return 1`)
	// Only the description mentions glow: 5.
	writePackage(t, root, "dim",
		manifestWith("dimmer", "Dimmer", "Turns the glow down",
			"utility", []string{"dark"}), `return 1`)
	// No match at all.
	writePackage(t, root, "mute",
		manifestWith("muter", "Muter", "Silences media",
			"audio", []string{"sound"}), `return 1`)
	mgr := newTestManager(t, root)

	recs := mgr.Recommend([]string{"glow"})
	if len(recs) != 2 {
		t.Fatalf("Recommend() = %v, want 2 entries", recs)
	}
	if recs[0].ID != "glow-effect" || recs[0].Score != 18 {
		t.Errorf("top = %+v, want glow-effect with score 18", recs[0])
	}
	if recs[1].ID != "dimmer" || recs[1].Score != 5 {
		t.Errorf("second = %+v, want dimmer with score 5", recs[1])
	}
}

// Full path from package on disk to execution and recommendation.
func TestGlowEffectEndToEnd(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "glow-effect",
		manifestWith("glow-effect", "Glow Effect", "Adds a soft halo to elements",
			"visual-effects", []string{"glow", "highlight"}),
		`page.inject_css("#target { box-shadow: 0 0 8px gold }")
		return {applied = true}`)
	mgr := newTestManager(t, root)

	rec := session.NewRecorder()
	res := mgr.Execute(context.Background(), "glow-effect", ExecutionContext{Session: rec})
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Error)
	}
	if len(rec.Evaluated()) != 1 {
		t.Errorf("evaluated scripts = %d, want 1", len(rec.Evaluated()))
	}

	// Name 10 + tag 8 for "glow", category 6 for "visual".
	recs := mgr.Recommend([]string{"glow", "visual"})
	if len(recs) == 0 || recs[0].ID != "glow-effect" || recs[0].Score != 24 {
		t.Errorf("Recommend() = %v, want glow-effect on top with score 24", recs)
	}
}

func TestRecommendCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "glow",
		manifestWith("glow-effect", "Glow Effect", "d", "visual-effects", nil), `return 1`)
	mgr := newTestManager(t, root)

	if recs := mgr.Recommend([]string{"GLOW"}); len(recs) != 1 {
		t.Errorf("Recommend(GLOW) = %v, matching should ignore case", recs)
	}
}

func TestRecommendTagCountedOncePerKeyword(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "p",
		manifestWith("p", "P", "d", "utility",
			[]string{"light-glow", "soft-glow", "glow"}), `return 1`)
	mgr := newTestManager(t, root)

	recs := mgr.Recommend([]string{"glow"})
	if len(recs) != 1 || recs[0].Score != scoreTag {
		t.Errorf("Recommend() = %v, tag matches should count once per keyword", recs)
	}
}

func TestRecommendExcludesZeroScores(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "p", simpleManifest("p"), `return 1`)
	mgr := newTestManager(t, root)

	if recs := mgr.Recommend([]string{"nothing-matches-this"}); len(recs) != 0 {
		t.Errorf("Recommend() = %v, want none", recs)
	}
}

func TestRecommendEmptyKeywords(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "p", simpleManifest("p"), `return 1`)
	mgr := newTestManager(t, root)

	if recs := mgr.Recommend(nil); len(recs) != 0 {
		t.Errorf("Recommend(nil) = %v, want none", recs)
	}
	if recs := mgr.Recommend([]string{"", "  "}); len(recs) != 0 {
		t.Errorf("Recommend(blank) = %v, want none", recs)
	}
}

func TestRecommendCapsAtFive(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("glow-%d", i)
		writePackage(t, root, id,
			manifestWith(id, "Glow "+id, "d", "visual-effects", nil), `return 1`)
	}
	mgr := newTestManager(t, root)

	if recs := mgr.Recommend([]string{"glow"}); len(recs) != 5 {
		t.Errorf("Recommend() = %d entries, want 5", len(recs))
	}
}

// Equal scores keep registration order.
func TestRecommendTieBreakRegistrationOrder(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "a-dir",
		manifestWith("first", "Glow A", "d", "utility", nil), `return 1`)
	writePackage(t, root, "b-dir",
		manifestWith("second", "Glow B", "d", "utility", nil), `return 1`)
	mgr := newTestManager(t, root)

	recs := mgr.Recommend([]string{"glow"})
	if len(recs) != 2 {
		t.Fatalf("Recommend() = %v, want 2", recs)
	}
	if recs[0].ID != "first" || recs[1].ID != "second" {
		t.Errorf("tie order = %v, want registration order", recs)
	}
}

func TestRecommendProperties(t *testing.T) {
	root := t.TempDir()
	names := []string{"glow", "sparkle", "border", "sound", "dark", "zoom"}
	categories := []string{"visual-effects", "decoration", "utility", "audio", "interaction", "utility"}
	for i, name := range names {
		writePackage(t, root, name,
			manifestWith(name, name, "a "+name+" plugin", categories[i],
				[]string{name, "common"}), `return 1`)
	}
	mgr := newTestManager(t, root)

	vocabulary := append([]string{"common", "plugin", "effects", "xyz", ""}, names...)

	rapid.Check(t, func(t *rapid.T) {
		keywords := rapid.SliceOfN(rapid.SampledFrom(vocabulary), 0, 6).Draw(t, "keywords")

		recs := mgr.Recommend(keywords)
		if len(recs) > maxRecommendations {
			t.Fatalf("Recommend() returned %d entries, cap is %d", len(recs), maxRecommendations)
		}
		for i, rec := range recs {
			if rec.Score <= 0 {
				t.Fatalf("entry %d has non-positive score %d", i, rec.Score)
			}
			if i > 0 && recs[i-1].Score < rec.Score {
				t.Fatalf("scores not descending: %v", recs)
			}
		}
		again := mgr.Recommend(keywords)
		if len(again) != len(recs) {
			t.Fatalf("Recommend() not deterministic: %v vs %v", recs, again)
		}
		for i := range recs {
			if recs[i] != again[i] {
				t.Fatalf("Recommend() not deterministic: %v vs %v", recs, again)
			}
		}
	})
}
