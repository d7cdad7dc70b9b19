package rhyme

// NearTableVersion identifies the consonant table used by NearPair. Persisted
// analyses should record it so results can be recomputed if it changes.
const NearTableVersion = "manner-v1"

// Consonants sharing a manner of articulation are near partners. Liquids and
// glides have no partners.
var mannerClass = map[string]string{
	"P": "stop", "B": "stop", "T": "stop", "D": "stop", "K": "stop", "G": "stop",
	"F": "fricative", "V": "fricative", "TH": "fricative", "DH": "fricative",
	"S": "fricative", "Z": "fricative", "SH": "fricative", "ZH": "fricative",
	"CH": "affricate", "JH": "affricate",
	"M": "nasal", "N": "nasal", "NG": "nasal",
}

// NearPair reports whether two distinct consonants are near-rhyme partners.
// The relation is symmetric.
func NearPair(a, b string) bool {
	if a == b {
		return false
	}
	ca, ok := mannerClass[a]
	if !ok {
		return false
	}
	return ca == mannerClass[b]
}
