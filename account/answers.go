package account

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/kmercer/storegate/internal/util"
)

// NormalizeAnswer canonicalizes a security-question answer before hashing or
// verification: Unicode NFKC, case fold, runs of whitespace collapsed to a
// single space, leading/trailing whitespace trimmed.
//
// The same normalization runs at registration time and at verification time,
// so "Blue", " blue " and "BLUE" all verify against the same stored hash.
func NormalizeAnswer(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// HashAnswer returns the salted argon2id encoding of the normalized answer.
func HashAnswer(answer string) (string, error) {
	return util.HashArgon2id(NormalizeAnswer(answer), util.DefaultArgon2idParams())
}

// VerifyAnswer checks a candidate answer against a stored hash. The candidate
// is normalized first; comparison of the derived key is constant-time.
// A malformed stored hash verifies as false rather than erroring, so a
// corrupt record behaves like a wrong answer.
func VerifyAnswer(encodedHash, answer string) bool {
	ok, err := util.VerifyArgon2id(NormalizeAnswer(answer), encodedHash)
	return err == nil && ok
}
