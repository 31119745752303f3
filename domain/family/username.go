package family

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
)

// randomDigits returns an n-digit numeric string. It only needs to spread
// usernames out, not to be unguessable; the unique index on families is the
// actual collision guard.
func randomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d", rand.IntN(10))
	}
	return b.String()
}

// GenerateFamilyUsername derives a family handle from the family name plus a
// 3-digit suffix. Collisions are possible and handled by the caller's retry
// loop against the unique index.
func GenerateFamilyUsername(familyName string) string {
	name := strings.ToLower(strings.Join(strings.Fields(familyName), ""))
	return name + randomDigits(3)
}

// GeneratePlaceholderUsername derives a username for a placeholder person
// record from the first 4 characters of their squashed full name plus a
// 3-digit suffix.
func GeneratePlaceholderUsername(fullName string) string {
	squashed := []rune(strings.ToLower(strings.Join(strings.Fields(fullName), "")))
	if len(squashed) > 4 {
		squashed = squashed[:4]
	}
	return string(squashed) + randomDigits(3)
}

// JoinLink builds the shareable invite URL for a family. Deterministic given
// its inputs.
func JoinLink(base, familyUsername, state string) string {
	return fmt.Sprintf("%s/%s?state=%s",
		strings.TrimRight(base, "/"),
		url.PathEscape(familyUsername),
		url.QueryEscape(state),
	)
}
