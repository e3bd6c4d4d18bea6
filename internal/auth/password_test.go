package auth

import (
	"strings"
	"testing"
)

func TestDeriveAndVerify(t *testing.T) {
	cred, err := Derive("hunter22")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !Verify("hunter22", cred) {
		t.Fatalf("expected credential to verify its own password")
	}
	if Verify("hunter23", cred) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestDeriveSaltsEveryCall(t *testing.T) {
	a, err := Derive("same-password")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := Derive("same-password")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a == b {
		t.Fatalf("two derivations of the same password must differ")
	}
	// Both still verify.
	if !Verify("same-password", a) || !Verify("same-password", b) {
		t.Fatalf("both credentials must verify the password")
	}
}

func TestDeriveFormat(t *testing.T) {
	cred, err := Derive("pw")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	salt, hash, ok := strings.Cut(cred, ":")
	if !ok {
		t.Fatalf("credential missing separator: %q", cred)
	}
	if len(salt) != saltBytes*2 {
		t.Errorf("salt hex length = %d, want %d", len(salt), saltBytes*2)
	}
	if len(hash) != keyLength*2 {
		t.Errorf("hash hex length = %d, want %d", len(hash), keyLength*2)
	}
}

func TestVerifyMalformedCredential(t *testing.T) {
	cases := []string{
		"",
		"no-separator",
		":onlyhash",
		"onlysalt:",
		":",
		"abc:zznothex",
		"zznothex:abcd",
	}
	for _, cred := range cases {
		if Verify("anything", cred) {
			t.Errorf("Verify(%q) = true, want false", cred)
		}
	}
}
