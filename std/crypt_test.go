package std

import "testing"

func TestTransportKeyDeterministic(t *testing.T) {
	a := TransportKey("it's a secrect")
	b := TransportKey("it's a secrect")
	if len(a) != 32 {
		t.Fatalf("key length = %d, want 32", len(a))
	}
	if string(a) != string(b) {
		t.Fatalf("same passphrase derived different keys")
	}
}

func TestSelectBlockCrypt(t *testing.T) {
	key := TransportKey("test")

	cases := []struct {
		method string
		want   string
	}{
		{"aes", "aes"},
		{"aes-128", "aes-128"},
		{"salsa20", "salsa20"},
		{"none", "none"},
		{"rot13", "aes"}, // unknown falls back
	}
	for _, tc := range cases {
		block, effective := SelectBlockCrypt(tc.method, key)
		if block == nil {
			t.Fatalf("SelectBlockCrypt(%q) returned nil cipher", tc.method)
		}
		if effective != tc.want {
			t.Fatalf("SelectBlockCrypt(%q) effective = %q, want %q", tc.method, effective, tc.want)
		}
	}
}
