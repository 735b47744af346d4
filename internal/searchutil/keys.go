package searchutil

import "strings"

// LookupKeys lists the normalized keys a show title may be stored under,
// most specific first: the whole title, then the part before a colon
// ("Frieren: Beyond Journey's End" is also tried as "frieren").
func LookupKeys(title string) []string {
	keys := make([]string, 0, 2)
	if full := Normalize(title); full != "" {
		keys = append(keys, full)
	}
	if head, _, found := strings.Cut(title, ":"); found {
		if short := Normalize(head); short != "" && (len(keys) == 0 || keys[0] != short) {
			keys = append(keys, short)
		}
	}
	return keys
}
