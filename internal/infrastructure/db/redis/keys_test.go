package redis

import "testing"

func TestKeys(t *testing.T) {
	if got := sessionKey("abc"); got != "session:abc" {
		t.Fatalf("unexpected session key %q", got)
	}
	if got := geocodeKey("  Beijing "); got != "geocode:beijing" {
		t.Fatalf("unexpected geocode key %q", got)
	}
	if geocodeKey("北京") != geocodeKey(" 北京") {
		t.Fatalf("geocode key should ignore surrounding space")
	}
}
