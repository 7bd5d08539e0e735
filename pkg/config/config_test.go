package config

import (
	"testing"
)

func TestParseJWKSEndpoints(t *testing.T) {
	endpoints := parseJWKSEndpoints("issuer1=https://one/jwks, issuer2 = https://two/jwks")
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(endpoints))
	}
	if endpoints["issuer1"] != "https://one/jwks" {
		t.Errorf("unexpected url for issuer1: %q", endpoints["issuer1"])
	}
	if endpoints["issuer2"] != "https://two/jwks" {
		t.Errorf("unexpected url for issuer2: %q", endpoints["issuer2"])
	}
}

func TestParseJWKSEndpoints_Empty(t *testing.T) {
	if got := parseJWKSEndpoints(""); len(got) != 0 {
		t.Errorf("expected empty map for empty input, got %v", got)
	}
}

func TestParseJWKSEndpoints_MalformedPairsSkipped(t *testing.T) {
	endpoints := parseJWKSEndpoints("issuer1=https://one/jwks,garbage,issuer2=https://two/jwks")
	if len(endpoints) != 2 {
		t.Errorf("expected malformed pair to be skipped, got %v", endpoints)
	}
}
