package ocrsrc

import (
	"context"
	"errors"
	"testing"
)

func TestMockSourceReturnsConfiguredObservations(t *testing.T) {
	m := &MockSource{ByPage: map[int][]Observation{
		1: {{Text: "hello", PageNumber: 1}},
	}}
	obs, err := m.Observe(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 1 || obs[0].Text != "hello" {
		t.Errorf("got %+v", obs)
	}
}

func TestMockSourcePropagatesError(t *testing.T) {
	m := &MockSource{Err: errors.New("boom")}
	_, err := m.Observe(context.Background(), nil, 1)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMockSourceEmptyPage(t *testing.T) {
	m := &MockSource{ByPage: map[int][]Observation{}}
	obs, err := m.Observe(context.Background(), nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("expected no observations, got %d", len(obs))
	}
}
