package phonetic

func isVowelLetter(r rune, first bool) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	case 'y':
		return !first
	}
	_, ok := cyrillicVowels[r]
	return ok
}

// Onset is the spelling a word starts with: its leading consonant letters, or
// its leading vowel letters when it starts with a vowel.
func Onset(word string) string {
	rs := []rune(LettersOnly(word))
	if len(rs) == 0 {
		return ""
	}
	vowel := isVowelLetter(rs[0], true)
	i := 1
	for i < len(rs) && isVowelLetter(rs[i], false) == vowel {
		i++
	}
	return string(rs[:i])
}

// Rime is the spelling from the word's last vowel letter group to its end
// ("night" -> "ight"). A silent final e belongs to the rime before it
// ("love" -> "ove"). Words without vowel letters are their own rime.
func Rime(word string) string {
	rs := []rune(LettersOnly(word))
	end := len(rs)
	if end > 2 && rs[end-1] == 'e' && !isVowelLetter(rs[end-2], false) {
		end--
	}
	i := end - 1
	for i >= 0 && !isVowelLetter(rs[i], i == 0) {
		i--
	}
	if i < 0 {
		if end < len(rs) {
			return string(rs[len(rs)-1:])
		}
		return string(rs)
	}
	for i > 0 && isVowelLetter(rs[i-1], i-1 == 0) {
		i--
	}
	return string(rs[i:])
}
