package memo

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	secret := make([]byte, 32)
	rand.Read(secret)
	note := []byte("rent for September")

	sealed, err := Seal(note, secret)
	if err != nil {
		t.Fatal(err)
	}
	t.Log("sealed memo:", sealed)

	opened, err := Open(sealed, secret)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(opened, note) {
		t.Fatalf("opened %q, want %q", opened, note)
	}
}

func TestOpenWrongSecret(t *testing.T) {
	secret := make([]byte, 32)
	rand.Read(secret)
	wrong := make([]byte, 32)
	rand.Read(wrong)

	sealed, err := Seal([]byte("for your eyes only"), secret)
	if err != nil {
		t.Fatal(err)
	}
	opened, err := Open(sealed, wrong)
	if err == nil && bytes.Equal(opened, []byte("for your eyes only")) {
		t.Fatal("wrong secret opened the memo")
	}
}

func TestOpenGarbage(t *testing.T) {
	secret := make([]byte, 32)
	rand.Read(secret)

	if _, err := Open("not base64!!", secret); err == nil {
		t.Fatal("accepted invalid base64")
	}
	if _, err := Open("c2hvcnQ", secret); err == nil { // shorter than one AES block
		t.Fatal("accepted ciphertext shorter than the IV")
	}
}
