package family

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFamilyUsername(t *testing.T) {
	got := GenerateFamilyUsername("Okonkwo Dynasty")
	assert.Regexp(t, regexp.MustCompile(`^okonkwodynasty\d{3}$`), got)
}

func TestGeneratePlaceholderUsername(t *testing.T) {
	got := GeneratePlaceholderUsername("Ngozi Adichie")
	assert.Regexp(t, regexp.MustCompile(`^ngoz\d{3}$`), got)

	// Short names keep whatever is there.
	got = GeneratePlaceholderUsername("Obi")
	assert.Regexp(t, regexp.MustCompile(`^obi\d{3}$`), got)
}

func TestJoinLinkDeterministic(t *testing.T) {
	a := JoinLink("https://app.kindred.family/join", "okafor123", "Enugu")
	b := JoinLink("https://app.kindred.family/join/", "okafor123", "Enugu")

	assert.Equal(t, "https://app.kindred.family/join/okafor123?state=Enugu", a)
	assert.Equal(t, a, b)
}

func TestJoinLinkEscapesState(t *testing.T) {
	got := JoinLink("https://app.test/join", "fam001", "Cross River")
	assert.Equal(t, "https://app.test/join/fam001?state=Cross+River", got)
}
