package account

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "blue", "blue"},
		{"uppercase", "BLUE", "blue"},
		{"mixed case", "bLuE", "blue"},
		{"surrounding whitespace", "  blue  ", "blue"},
		{"inner run", "smith   jones", "smith jones"},
		{"tabs and newlines", "smith\t\njones", "smith jones"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unicode compatibility", "ﬁdo", "fido"},
		{"case fold sharp s", "Straße", "strasse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeAnswer(tc.in); got != tc.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAnswerHashRoundTrip(t *testing.T) {
	hash, err := HashAnswer("Blue")
	if err != nil {
		t.Fatalf("HashAnswer: %v", err)
	}
	// All normalization-equivalent inputs verify.
	for _, in := range []string{"Blue", "blue", " BLUE ", "bLuE"} {
		if !VerifyAnswer(hash, in) {
			t.Errorf("VerifyAnswer(%q) = false, want true", in)
		}
	}
	if VerifyAnswer(hash, "red") {
		t.Error("wrong answer verified")
	}
	if VerifyAnswer(hash, "") {
		t.Error("empty answer verified")
	}
}

func TestVerifyAnswerMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "plaintext", "$argon2id$garbage", "$2a$10$bcryptstyle"} {
		if VerifyAnswer(hash, "blue") {
			t.Errorf("VerifyAnswer with stored hash %q = true, want false", hash)
		}
	}
}

func TestAnswerHashesAreSalted(t *testing.T) {
	h1, err := HashAnswer("blue")
	if err != nil {
		t.Fatalf("HashAnswer: %v", err)
	}
	h2, err := HashAnswer("blue")
	if err != nil {
		t.Fatalf("HashAnswer: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same answer are identical")
	}
}
