package cache

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("calm", 1.0, 1.0, "hello world")
	b := Fingerprint("calm", 1.0, 1.0, "hello world")
	if a != b {
		t.Errorf("same inputs produced different keys: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "v1_") {
		t.Errorf("key %s missing version prefix", a)
	}
}

func TestFingerprintVariesWithInputs(t *testing.T) {
	base := Fingerprint("calm", 1.0, 1.0, "hello world")

	cases := map[string]string{
		"profile": Fingerprint("deep", 1.0, 1.0, "hello world"),
		"rate":    Fingerprint("calm", 1.5, 1.0, "hello world"),
		"pitch":   Fingerprint("calm", 1.0, 0.8, "hello world"),
		"text":    Fingerprint("calm", 1.0, 1.0, "different text"),
	}
	for name, key := range cases {
		if key == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}
}

func TestFingerprintTruncatesText(t *testing.T) {
	long := strings.Repeat("x", 300)
	a := Fingerprint("calm", 1.0, 1.0, long)
	b := Fingerprint("calm", 1.0, 1.0, long+" trailing differs")
	if a != b {
		t.Error("keys should collide when the leading text matches")
	}

	c := Fingerprint("calm", 1.0, 1.0, "y"+long)
	if a == c {
		t.Error("different leading text produced the same key")
	}
}
