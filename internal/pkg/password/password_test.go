package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals the plaintext")
	}

	if !Verify("secret123", hash) {
		t.Error("correct password did not verify")
	}
	if Verify("wrong", hash) {
		t.Error("wrong password verified")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	c := HashToken("another-token")

	if a != b {
		t.Error("hashing the same token twice gave different results")
	}
	if a == c {
		t.Error("different tokens hashed to the same value")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("5-char password accepted")
	}
	if !ValidatePassword("longenough") {
		t.Error("valid password rejected")
	}
}
