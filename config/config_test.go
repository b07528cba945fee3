package config

import "testing"

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	d := Default()
	if d.Processing.MergeDistanceThreshold != 0.015 {
		t.Errorf("MergeDistanceThreshold = %v, want 0.015", d.Processing.MergeDistanceThreshold)
	}
	if d.Processing.HeaderRegion != [2]float64{0.0, 0.08} {
		t.Errorf("HeaderRegion = %v", d.Processing.HeaderRegion)
	}
	if d.LanguageDetection.ConfidenceThreshold != 0.6 {
		t.Errorf("ConfidenceThreshold = %v, want 0.6", d.LanguageDetection.ConfidenceThreshold)
	}
	if d.LLM.Enabled {
		t.Error("LLM.Enabled should default to false")
	}
	if d.LLM.RequestTimeoutSeconds != 60 {
		t.Errorf("RequestTimeoutSeconds = %d, want 60", d.LLM.RequestTimeoutSeconds)
	}
}

func TestValidateRejectsInvertedRegion(t *testing.T) {
	c := Default()
	c.Processing.HeaderRegion = [2]float64{0.5, 0.1}
	if err := c.Validate(); err == nil {
		t.Error("expected error for inverted header region")
	}
}

func TestValidateRejectsZeroMaxColumns(t *testing.T) {
	c := Default()
	c.Processing.MaxColumns = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for MaxColumns 0")
	}
}

func TestLoadWithoutConfigFileFallsBackToDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Processing.MergeDistanceThreshold != 0.015 {
		t.Errorf("expected defaults when no config file present, got %+v", c.Processing)
	}
}
