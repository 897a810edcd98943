package crypto

import (
	"bytes"
	"testing"
)

func testBox(t *testing.T) *Box {
	t.Helper()
	b, err := NewBox(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	return b
}

func TestNewBoxKeyLength(t *testing.T) {
	if _, err := NewBox(make([]byte, 16), make([]byte, 32)); err == nil {
		t.Fatal("expected error for short encryption key")
	}
	if _, err := NewBox(make([]byte, 32), nil); err == nil {
		t.Fatal("expected error for missing blind index key")
	}
}

func TestSealOpen(t *testing.T) {
	b := testBox(t)
	sealed, err := b.Seal("felt scattered, then wrote it all down")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == "felt scattered, then wrote it all down" {
		t.Fatal("plaintext was not sealed")
	}
	again, _ := b.Seal("felt scattered, then wrote it all down")
	if again == sealed {
		t.Fatal("nonce reuse: identical ciphertexts")
	}
	opened, err := b.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != "felt scattered, then wrote it all down" {
		t.Fatalf("unexpected plaintext %q", opened)
	}
}

func TestSealEmpty(t *testing.T) {
	b := testBox(t)
	if s, _ := b.Seal(""); s != "" {
		t.Fatalf("expected empty, got %q", s)
	}
	if s, _ := b.Open(""); s != "" {
		t.Fatalf("expected empty, got %q", s)
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	b := testBox(t)
	if _, err := b.Open("AAAA"); err == nil {
		t.Fatal("expected error for short ciphertext")
	}
	sealed, _ := b.Seal("x")
	other, _ := NewBox(bytes.Repeat([]byte{9}, 32), bytes.Repeat([]byte{2}, 32))
	if _, err := other.Open(sealed); err == nil {
		t.Fatal("expected error opening with the wrong key")
	}
}

func TestSealAllOpenAll(t *testing.T) {
	b := testBox(t)
	a, c := "reflection", "notes"
	if err := b.SealAll(&a, &c); err != nil {
		t.Fatalf("SealAll: %v", err)
	}
	if a == "reflection" || c == "notes" {
		t.Fatal("fields not sealed")
	}
	if err := b.OpenAll(&a, &c); err != nil {
		t.Fatalf("OpenAll: %v", err)
	}
	if a != "reflection" || c != "notes" {
		t.Fatalf("round trip failed: %q %q", a, c)
	}
}

func TestBlindIndexDeterministic(t *testing.T) {
	b := testBox(t)
	if b.BlindIndex("a@b.c") != b.BlindIndex("a@b.c") {
		t.Fatal("blind index not deterministic")
	}
	if b.BlindIndex("a@b.c") == b.BlindIndex("x@b.c") {
		t.Fatal("blind index collision")
	}
	if b.BlindIndex("") != "" {
		t.Fatal("empty input should give empty index")
	}
}
