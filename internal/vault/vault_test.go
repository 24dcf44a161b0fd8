package vault

import "testing"

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref, path, key string
		ok             bool
	}{
		{"vault:kv/apikit/db#password", "kv/apikit/db", "password", true},
		{"vault:secret/x#a#b", "secret/x#a", "b", true},
		{"vault:kv/db", "", "", false},
		{"vault:kv/db#", "", "", false},
		{"vault:#key", "", "", false},
		{"vault:nomount#key", "", "", false},
		{"plain", "", "", false},
	}
	for _, tt := range tests {
		path, key, err := ParseRef(tt.ref)
		if (err == nil) != tt.ok {
			t.Errorf("ParseRef(%q) err = %v, want ok=%v", tt.ref, err, tt.ok)
			continue
		}
		if tt.ok && (path != tt.path || key != tt.key) {
			t.Errorf("ParseRef(%q) = %q, %q", tt.ref, path, key)
		}
	}
}

func TestSplitMount(t *testing.T) {
	m, rel := splitMount("kv/apikit/db")
	if m != "kv" || rel != "apikit/db" {
		t.Fatalf("splitMount = %q, %q", m, rel)
	}
}
