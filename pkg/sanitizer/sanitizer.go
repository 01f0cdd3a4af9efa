package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reCollapseSpaces = regexp.MustCompile(`\s+`)
	reKeepNameRunes  = regexp.MustCompile(`[^0-9\p{L}\s.'-]+`)

	// Regions tried in order when the contact number has no country prefix.
	supportedRegions = []string{"BR", "US"}

	reValidPhone = regexp.MustCompile(`^(?:|\+?[0-9() .-]{8,20})$`)
)

func TrimAndNormalize(s string) string {
	return reCollapseSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeName keeps letters, digits, spaces and common name punctuation,
// collapsing whitespace. Case is preserved, requester names are stored as typed.
func NormalizeName(input string) string {
	p := Pipeline{
		func(s string) string { return reKeepNameRunes.ReplaceAllString(s, "") },
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// NormalizePhone returns the E.164 form of the supplied number, or the empty
// string when the number cannot be parsed for any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || !reValidPhone.MatchString(phone) {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

// NormalizeContact accepts either a phone number or an e-mail address.
// Phones are normalized to E.164; anything containing '@' is lowercased.
func NormalizeContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}
	if strings.Contains(contact, "@") {
		return strings.ToLower(contact)
	}
	if normalized := NormalizePhone(contact); normalized != "" {
		return normalized
	}
	return contact
}
