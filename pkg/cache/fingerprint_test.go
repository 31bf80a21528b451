package cache

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("Guten Tag", "de", "en", "")
	b := Fingerprint("Guten Tag", "de", "en", "")
	if a != b {
		t.Errorf("identical inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}
}

func TestFingerprintAutoSourceLang(t *testing.T) {
	if Fingerprint("hello", "", "de", "") != Fingerprint("hello", "auto", "de", "") {
		t.Error("empty source lang should hash as auto")
	}
}

func TestFingerprintNormalization(t *testing.T) {
	if Fingerprint("line one\r\nline two", "en", "de", "") != Fingerprint("line one\nline two", "en", "de", "") {
		t.Error("CRLF and LF bodies should share a fingerprint")
	}
	if Fingerprint("  hello  ", "en", "de", "") != Fingerprint("hello", "en", "de", "") {
		t.Error("surrounding whitespace should not change the fingerprint")
	}
}

func TestFingerprintDistinguishes(t *testing.T) {
	base := Fingerprint("hello", "en", "de", "")
	tests := []struct {
		name string
		got  string
	}{
		{"different text", Fingerprint("hallo", "en", "de", "")},
		{"different source lang", Fingerprint("hello", "fr", "de", "")},
		{"different target lang", Fingerprint("hello", "en", "ja", "")},
		{"glossary present", Fingerprint("hello", "en", "de", "abc123")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Errorf("fingerprint should differ from base")
			}
		})
	}
}

func TestFingerprintGlossaryChange(t *testing.T) {
	before := Fingerprint("the flange is defective", "en", "de", "g1")
	after := Fingerprint("the flange is defective", "en", "de", "g2")
	if before == after {
		t.Error("glossary fingerprint change must change the cache key")
	}

	// Glossary-free requests are unaffected by any tenant's glossary.
	if Fingerprint("thanks", "en", "de", "") != Fingerprint("thanks", "en", "de", "") {
		t.Error("glossary-free fingerprint must stay stable")
	}
}
