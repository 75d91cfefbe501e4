package speech

import (
	"strings"

	"github.com/ialtaf14/Nova-AI/internal/lang"
)

// DefaultRegion is the accent region voices are matched against.
const DefaultRegion = "IN"

var (
	regionNameHints = map[string][]string{
		"IN": {"India", "Hindi"},
	}
	hindiNameHints  = []string{"Hindi", "Kalpana", "Heera", "Lekha"}
	femaleNameHints = []string{"Female", "Kalpana", "Heera", "Lekha", "Veena", "Isha", "Samantha", "Karen", "Zira"}
	maleNameHints   = []string{"Male", "Ravi", "Rishi", "Hemant", "Daniel", "Alex", "David"}
)

// voicePredicate is one preference tier.
type voicePredicate func(Voice) bool

// ResolveVoice picks a voice for tag from voices by walking preference tiers
// in order. Indic tags prefer a female Hindi voice, English prefers a male
// voice, and both prefer the given accent region before falling back to the
// first voice available. It returns false only when voices is empty.
func ResolveVoice(voices []Voice, tag lang.Tag, region string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	regional := func(v Voice) bool { return inRegion(v, region) }

	var tiers []voicePredicate
	if tag.IsIndic() {
		tiers = []voicePredicate{
			all(regional, isHindi, isFemale),
			all(regional, isHindi),
			all(regional, isFemale),
			regional,
		}
	} else {
		tiers = []voicePredicate{
			all(regional, isMale),
			all(regional, isEnglish, not(isFemale)),
			all(regional, not(isFemale)),
			all(regional, isEnglish),
			regional,
		}
	}
	for _, match := range tiers {
		for _, v := range voices {
			if match(v) {
				return v, true
			}
		}
	}
	return voices[0], true
}

func inRegion(v Voice, region string) bool {
	if localeRegion(v.Locale) == region {
		return true
	}
	return containsAny(v.Name, regionNameHints[region])
}

// localeRegion extracts "IN" from "en-IN", "en_IN" or "hi_IN".
func localeRegion(locale string) string {
	locale = strings.ReplaceAll(locale, "_", "-")
	if i := strings.LastIndexByte(locale, '-'); i >= 0 {
		return strings.ToUpper(locale[i+1:])
	}
	return ""
}

func localeLanguage(locale string) string {
	locale = strings.ReplaceAll(locale, "_", "-")
	if i := strings.IndexByte(locale, '-'); i >= 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}

func isHindi(v Voice) bool {
	return localeLanguage(v.Locale) == "hi" || containsAny(v.Name, hindiNameHints)
}

func isEnglish(v Voice) bool {
	return localeLanguage(v.Locale) == "en"
}

func isFemale(v Voice) bool {
	if v.Gender != "" {
		return strings.EqualFold(v.Gender, GenderFemale)
	}
	return containsAny(v.Name, femaleNameHints)
}

func isMale(v Voice) bool {
	if v.Gender != "" {
		return strings.EqualFold(v.Gender, GenderMale)
	}
	return containsAny(v.Name, maleNameHints) && !containsAny(v.Name, femaleNameHints)
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func all(preds ...voicePredicate) voicePredicate {
	return func(v Voice) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

func not(p voicePredicate) voicePredicate {
	return func(v Voice) bool { return !p(v) }
}
