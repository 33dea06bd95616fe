package inscribe

import "testing"

func TestBuildAndParseHRL(t *testing.T) {
	hrl := BuildHRL("0.0.5005")
	if hrl != "hcs://721/0.0.5005" {
		t.Fatalf("unexpected locator %q", hrl)
	}

	topicID, err := ParseHRL(hrl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topicID != "0.0.5005" {
		t.Fatalf("expected topic 0.0.5005, got %q", topicID)
	}

	topicID, err = ParseHRL("  hcs://721/0.0.7  ")
	if err != nil {
		t.Fatalf("unexpected error for padded locator: %v", err)
	}
	if topicID != "0.0.7" {
		t.Fatalf("expected topic 0.0.7, got %q", topicID)
	}
}

func TestParseHRLRejectsForeignLocators(t *testing.T) {
	invalid := []string{
		"",
		"0.0.5005",
		"hcs://1/0.0.5005",
		"hcs://721/",
		"hcs://721/abc",
		"hcs://721/0.0.5005/extra",
		"https://game.example/item-id-8u5h2m.json",
	}
	for _, locator := range invalid {
		if _, err := ParseHRL(locator); err == nil {
			t.Fatalf("expected error for %q", locator)
		}
	}
}

func TestIsHRL(t *testing.T) {
	if !IsHRL("hcs://721/0.0.5005") {
		t.Fatalf("expected locator to be recognized")
	}
	if IsHRL("hcs://1/0.0.5005") {
		t.Fatalf("expected foreign standard to be rejected")
	}
	if IsHRL("https://game.example/item-id-8u5h2m.json") {
		t.Fatalf("expected HTTP URI to be rejected")
	}
}
