package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "labels.db"), true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLabelSetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	record := &LabelSetRecord{
		Language:         "ta",
		DecisionCard:     "முடிவு அட்டை",
		Verdict:          "தீர்ப்பு:",
		WhyThisMatters:   "இது ஏன் முக்கியம்:",
		WhyYouMightCare:  "நீங்கள் ஏன் கவலைப்படலாம்:",
		Confidence:       "நம்பிக்கை:",
		Uncertainty:      "நிச்சயமின்மை:",
		BetterChoiceHint: "சிறந்த தேர்வு குறிப்பு:",
		Closure:          "முடிவுரை:",
	}
	if err := db.SaveLabelSet(record); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := db.GetLabelSet("ta")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cached label set")
	}
	if loaded.DecisionCard != record.DecisionCard {
		t.Fatalf("expected %q got %q", record.DecisionCard, loaded.DecisionCard)
	}
}

func TestLabelSetUpsert(t *testing.T) {
	db := openTestDB(t)

	first := &LabelSetRecord{Language: "bn", DecisionCard: "old"}
	if err := db.SaveLabelSet(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &LabelSetRecord{Language: "bn", DecisionCard: "new"}
	if err := db.SaveLabelSet(second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, ok, err := db.GetLabelSet("bn")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if loaded.DecisionCard != "new" {
		t.Fatalf("expected upserted value, got %q", loaded.DecisionCard)
	}

	languages, err := db.ListLanguages()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(languages) != 1 || languages[0] != "bn" {
		t.Fatalf("unexpected languages %v", languages)
	}
}

func TestGetLabelSetMissing(t *testing.T) {
	db := openTestDB(t)
	_, ok, err := db.GetLabelSet("kn")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected no cached entry")
	}
}
