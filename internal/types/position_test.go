package types

import (
	"encoding/json"
	"testing"
)

func TestPositionJSONRoundTrip(t *testing.T) {
	t.Parallel()

	p := Position{Latitude: 49.3278, Longitude: 8.5656}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := string(data); got != `{"latitude":"49.3278","longitude":"8.5656"}` {
		t.Errorf("Marshal() = %s", got)
	}

	var decoded Position
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !p.Equal(decoded) {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, p)
	}
}

func TestPositionUnmarshalMalformedYieldsZero(t *testing.T) {
	t.Parallel()

	var p Position
	if err := json.Unmarshal([]byte(`{"latitude":"not-a-number","longitude":"8.5"}`), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !p.IsZero() {
		t.Errorf("expected zero Position, got %+v", p)
	}
}

func TestPositionIsZero(t *testing.T) {
	t.Parallel()

	if !(Position{}).IsZero() {
		t.Error("zero value must report IsZero")
	}
	if (Position{Latitude: 1}).IsZero() {
		t.Error("non-zero value must not report IsZero")
	}
}
