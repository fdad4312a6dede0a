package service

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword("correct horse battery", hash) {
		t.Fatal("expected the original password to verify")
	}
	if VerifyPassword("wrong password", hash) {
		t.Fatal("expected a wrong password to fail verification")
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := HashPassword("same input", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same input", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("equal inputs must produce distinct hashes")
	}
	if !VerifyPassword("same input", first) || !VerifyPassword("same input", second) {
		t.Fatal("both hashes must verify against the original input")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	for _, cost := range []int{-1, 0, 3, 99} {
		if _, err := HashPassword("password", cost); err != nil {
			t.Fatalf("cost %d: expected clamping, got error %v", cost, err)
		}
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$garbage"} {
		if VerifyPassword("anything", hash) {
			t.Fatalf("hash %q: malformed hash must verify as false", hash)
		}
	}
}
