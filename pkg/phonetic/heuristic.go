package phonetic

// Derive builds a pronunciation from spelling alone. The word is reduced with
// LettersOnly first; Cyrillic words are handled letter by letter, Latin words
// by a small set of English spelling rules. Every word containing at least
// one letter yields at least one vowel nucleus.
func Derive(word string) []Phoneme {
	w := LettersOnly(word)
	if w == "" {
		return nil
	}
	if HasCyrillic(w) {
		return deriveCyrillic(w)
	}
	return deriveLatin(w)
}

type letterKind uint8

const (
	kindConsonant letterKind = iota
	kindVowel
	kindSilent
)

type span struct{ start, end int }

func isAEIOU(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isVoiceless(sym string) bool {
	switch sym {
	case "P", "T", "K", "F", "TH", "S", "SH", "CH", "HH":
		return true
	}
	return false
}

// latinWord carries the per-letter analysis of a lowercase a-z word.
type latinWord struct {
	b     []byte
	kinds []letterKind
	magic map[int]bool // cluster start -> long vowel from a silent final e
	lePos int          // index of the l in a syllabic "-le"/"-les", or -1
}

func classifyLatin(w string) *latinWord {
	lw := &latinWord{b: []byte(w), kinds: make([]letterKind, len(w)), magic: map[int]bool{}, lePos: -1}
	b, n := lw.b, len(w)
	for i := 0; i < n; i++ {
		c := b[i]
		switch {
		case c == 'u' && i > 0 && b[i-1] == 'q':
			lw.kinds[i] = kindConsonant
		case isAEIOU(c):
			lw.kinds[i] = kindVowel
		case c == 'y':
			if i+1 < n && isAEIOU(b[i+1]) && !lw.finalYe(i) {
				lw.kinds[i] = kindConsonant
			} else {
				lw.kinds[i] = kindVowel
			}
		case c == 'w':
			if i > 0 && lw.kinds[i-1] == kindVowel && (i+1 == n || !isAEIOU(b[i+1])) {
				lw.kinds[i] = kindVowel
			}
		}
	}
	lw.silenceEndings()
	return lw
}

// finalYe reports a y that opens a word-final "ye", "yes" or "yed" after a
// consonant, or the y of "eye". Such a y is the vowel of the last syllable.
func (lw *latinWord) finalYe(i int) bool {
	b, n := lw.b, len(lw.b)
	if i == 0 || b[i+1] != 'e' {
		return false
	}
	if i+2 != n && (i+3 != n || (b[n-1] != 's' && b[n-1] != 'd')) {
		return false
	}
	if i == 1 && b[0] == 'e' {
		return true
	}
	return lw.kinds[i-1] == kindConsonant
}

func (lw *latinWord) clusters() []span {
	var out []span
	for i := 0; i < len(lw.b); {
		if lw.kinds[i] != kindVowel {
			i++
			continue
		}
		j := i
		for j < len(lw.b) && lw.kinds[j] == kindVowel {
			j++
		}
		out = append(out, span{i, j})
		i = j
	}
	return out
}

// silenceEndings handles final "e", "-ed", "-es" and syllabic "-le".
func (lw *latinWord) silenceEndings() {
	cl := lw.clusters()
	if len(cl) < 2 {
		return
	}
	b, n := lw.b, len(lw.b)
	last := cl[len(cl)-1]
	if last.end-last.start != 1 || b[last.start] != 'e' {
		return
	}
	pos := last.start
	syllabicL := func(l int) bool {
		return l >= 1 && b[l] == 'l' && lw.kinds[l-1] == kindConsonant && b[l-1] != 'l'
	}
	silent := false
	switch {
	case pos == n-1:
		if syllabicL(pos - 1) {
			lw.lePos = pos - 1
		}
		silent = true
	case pos == n-2 && b[n-1] == 'd':
		prev := b[pos-1]
		silent = prev != 't' && prev != 'd'
	case pos == n-2 && b[n-1] == 's':
		prev := b[pos-1]
		sibilant := prev == 's' || prev == 'x' || prev == 'z' || prev == 'c' || prev == 'g' ||
			(prev == 'h' && pos >= 2 && (b[pos-2] == 'c' || b[pos-2] == 's'))
		if syllabicL(pos - 1) {
			lw.lePos = pos - 1
		}
		silent = !sibilant
	}
	if !silent {
		return
	}
	lw.kinds[pos] = kindSilent
	if lw.lePos >= 0 {
		return
	}
	prev := cl[len(cl)-2]
	if prev.end-prev.start == 1 && prev.end == pos-1 {
		switch b[prev.end] {
		case 'w', 'x', 'y':
		default:
			lw.magic[prev.start] = true
		}
	}
}

func deriveLatin(w string) []Phoneme {
	lw := classifyLatin(w)
	b, n := lw.b, len(lw.b)
	nuclei := len(lw.clusters())
	if lw.lePos >= 0 {
		nuclei++
	}

	var out []Phoneme
	emit := func(syms ...string) {
		for _, s := range syms {
			out = append(out, Phoneme{Symbol: s})
		}
	}
	next := func(i int) byte {
		if i < n {
			return b[i]
		}
		return 0
	}

	for i := 0; i < n; {
		switch lw.kinds[i] {
		case kindSilent:
			i++
			continue
		case kindVowel:
			j := i
			for j < n && lw.kinds[j] == kindVowel {
				j++
			}
			ctx := vowelContext{
				magic:  lw.magic[i],
				open:   j == n,
				only:   nuclei == 1,
				rAfter: j < n && b[j] == 'r' && (j+1 == n || lw.kinds[j+1] != kindVowel),
				rest:   string(b[j:]),
			}
			sym, takesR := vowelFor(string(b[i:j]), ctx)
			emit(sym)
			if takesR {
				j++
			}
			i = j
			continue
		}

		if i == lw.lePos {
			emit("AH", "L")
			i++
			continue
		}
		c, c1 := b[i], next(i+1)
		if i == 0 && c1 != 0 {
			switch string(b[:2]) {
			case "kn", "gn":
				emit("N")
				i += 2
				continue
			case "wr":
				emit("R")
				i += 2
				continue
			}
		}
		if i+3 <= n && string(b[i:i+3]) == "tch" {
			emit("CH")
			i += 3
			continue
		}
		if (c == 't' || c == 's' || c == 'c') && c1 == 'i' && (next(i+2) == 'o' || next(i+2) == 'a') {
			emit("SH")
			i++
			continue
		}
		if c1 != 0 && lw.kinds[i+1] == kindConsonant {
			consumed := true
			switch string([]byte{c, c1}) {
			case "ch":
				emit("CH")
			case "sh":
				emit("SH")
			case "th":
				emit("TH")
			case "ph":
				emit("F")
			case "ck":
				emit("K")
			case "wh":
				emit("W")
			case "qu":
				emit("K", "W")
			case "dg":
				emit("JH")
			case "gh":
				if i == 0 {
					emit("G")
				}
			case "ng":
				if n2 := next(i + 2); n2 == 'e' || n2 == 'i' || n2 == 'y' {
					consumed = false
				} else {
					emit("NG")
				}
			case "mb":
				if i+2 == n {
					emit("M")
				} else {
					consumed = false
				}
			default:
				consumed = false
			}
			if consumed {
				i += 2
				continue
			}
		}
		step := 1
		if c1 == c && lw.kinds[i+1] == kindConsonant {
			step = 2
		}
		switch c {
		case 'c':
			if n1 := next(i + step); n1 == 'e' || n1 == 'i' || n1 == 'y' {
				emit("S")
			} else {
				emit("K")
			}
		case 'g':
			if next(i+step) == 'e' && (i+step+1 == n || (i+step+2 == n && (b[n-1] == 's' || b[n-1] == 'd'))) {
				emit("JH")
			} else {
				emit("G")
			}
		case 'h':
			if i+1 < n && lw.kinds[i+1] == kindVowel {
				emit("HH")
			}
		case 's':
			voiced := false
			if step == 1 && i+1 == n && len(out) > 0 && !isVoiceless(out[len(out)-1].Symbol) {
				prev := b[i-1]
				voiced = !out[len(out)-1].IsVowel() || lw.kinds[i-1] == kindSilent || prev == 'y' || prev == 'w'
			}
			if voiced {
				emit("Z")
			} else {
				emit("S")
			}
		case 'x':
			if i == 0 {
				emit("Z")
			} else {
				emit("K", "S")
			}
		default:
			if sym, ok := latinConsonants[c]; ok {
				emit(sym)
			}
		}
		i += step
	}

	// A final "ye" carries the stress, as in goodbye.
	stressLast := false
	if cl := lw.clusters(); len(cl) > 1 {
		last := cl[len(cl)-1]
		stressLast = string(b[last.start:last.end]) == "ye"
	}
	return finishNuclei(out, stressLast)
}

var latinConsonants = map[byte]string{
	'b': "B", 'd': "D", 'f': "F", 'j': "JH", 'k': "K", 'l': "L", 'm': "M", 'n': "N",
	'p': "P", 'q': "K", 'r': "R", 't': "T", 'v': "V", 'w': "W", 'y': "Y", 'z': "Z",
}

type vowelContext struct {
	magic  bool   // long vowel forced by a silent final e
	open   bool   // cluster ends the word
	only   bool   // the word has a single nucleus
	rAfter bool   // followed by an r that closes the syllable
	rest   string // letters after the cluster
}

var digraphVowels = map[string]string{
	"ai": "EY", "ay": "EY", "ei": "EY", "ea": "IY", "ee": "IY", "oa": "OW", "oe": "OW",
	"oo": "UW", "ou": "AW", "ow": "OW", "oi": "OY", "oy": "OY", "au": "AO", "aw": "AO",
	"ew": "UW", "eu": "UW", "ue": "UW", "ui": "UW", "uy": "AY", "ye": "AY", "eye": "AY", "aye": "AY",
	"eau": "OW", "io": "AH", "ia": "AH", "iu": "AH", "ua": "AH",
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

// vowelFor maps a vowel letter cluster to one vowel phoneme. takesR reports
// that the following r was absorbed into an r-coloured vowel.
func vowelFor(cl string, ctx vowelContext) (sym string, takesR bool) {
	gh := hasPrefixAny(ctx.rest, "gh")
	if len(cl) == 1 {
		c := cl[0]
		switch {
		case ctx.magic:
			if c == 'o' && hasPrefixAny(ctx.rest, "ve") {
				return "AH", false
			}
			return map[byte]string{'a': "EY", 'e': "IY", 'i': "AY", 'o': "OW", 'u': "UW", 'y': "AY"}[c], false
		case c == 'i' && (gh || (ctx.only && hasPrefixAny(ctx.rest, "nd", "ld"))):
			return "AY", false
		case c == 'o' && hasPrefixAny(ctx.rest, "ld", "lt"):
			return "OW", false
		case c == 'a' && hasPrefixAny(ctx.rest, "ll", "lk", "lt"):
			return "AO", false
		case ctx.rAfter:
			switch c {
			case 'a':
				return "AA", false
			case 'o':
				return "AO", false
			default:
				return "ER", true
			}
		case ctx.open:
			switch c {
			case 'a':
				if ctx.only {
					return "AA", false
				}
				return "AH", false
			case 'e':
				return "IY", false
			case 'o':
				return "OW", false
			case 'u':
				return "UW", false
			default:
				if ctx.only {
					return "AY", false
				}
				return "IY", false
			}
		default:
			if sym, ok := map[byte]string{'a': "AE", 'e': "EH", 'i': "IH", 'o': "AA", 'u': "AH", 'y': "IH"}[c]; ok {
				return sym, false
			}
			return "AH", false
		}
	}

	switch cl {
	case "ey":
		if ctx.open && !ctx.only {
			return "IY", false
		}
		return "EY", false
	case "ie":
		if ctx.only && (ctx.open || ctx.rest == "s" || ctx.rest == "d") {
			return "AY", false
		}
		return "IY", false
	case "ou":
		switch {
		case gh:
			return "AO", false
		case ctx.open:
			return "UW", false
		case hasPrefixAny(ctx.rest, "ld"):
			return "UH", false
		}
	case "oo":
		if hasPrefixAny(ctx.rest, "k") {
			return "UH", false
		}
	}
	if sym, ok := digraphVowels[cl]; ok {
		return sym, false
	}
	if len(cl) > 2 {
		if sym, ok := digraphVowels[cl[:2]]; ok {
			return sym, false
		}
	}
	return vowelFor(cl[:1], vowelContext{rest: cl[1:] + ctx.rest})
}

var cyrillicVowels = map[rune]string{
	'а': "AA", 'е': "EH", 'и': "IY", 'о': "AO", 'у': "UW", 'ъ': "AH", 'ю': "UW",
	'я': "AA", 'ы': "IH", 'э': "EH", 'ё': "AO", 'і': "IY", 'ї': "IY", 'є': "EH",
}

var cyrillicConsonants = map[rune][]string{
	'б': {"B"}, 'в': {"V"}, 'г': {"G"}, 'д': {"D"}, 'ж': {"ZH"}, 'з': {"Z"}, 'й': {"Y"},
	'к': {"K"}, 'л': {"L"}, 'м': {"M"}, 'н': {"N"}, 'п': {"P"}, 'р': {"R"}, 'с': {"S"},
	'т': {"T"}, 'ф': {"F"}, 'х': {"HH"}, 'ц': {"T", "S"}, 'ч': {"CH"}, 'ш': {"SH"},
	'щ': {"SH", "T"}, 'ґ': {"G"}, 'џ': {"JH"}, 'ђ': {"JH"}, 'ћ': {"CH"}, 'љ': {"L"},
	'њ': {"N"}, 'ј': {"Y"},
}

var devoiced = map[string]string{"B": "P", "V": "F", "G": "K", "D": "T", "ZH": "SH", "Z": "S"}

// deriveCyrillic maps every vowel letter to its own nucleus and devoices the
// consonants closing the word.
func deriveCyrillic(w string) []Phoneme {
	var out []Phoneme
	for _, r := range w {
		if sym, ok := cyrillicVowels[r]; ok {
			out = append(out, Phoneme{Symbol: sym})
			continue
		}
		for _, sym := range cyrillicConsonants[r] {
			out = append(out, Phoneme{Symbol: sym})
		}
	}
	for i := len(out) - 1; i >= 0 && !out[i].IsVowel(); i-- {
		if d, ok := devoiced[out[i].Symbol]; ok {
			out[i].Symbol = d
		}
	}
	vowelFinal := len(out) > 0 && out[len(out)-1].IsVowel()
	return finishNuclei(out, !vowelFinal)
}

// finishNuclei guarantees a nucleus and assigns stress: primary on the only
// nucleus, otherwise on the penultimate one unless stressLast is set.
func finishNuclei(out []Phoneme, stressLast bool) []Phoneme {
	var idx []int
	for i, p := range out {
		if p.IsVowel() {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		at := 0
		if len(out) > 0 {
			at = len(out) - 1
		}
		out = append(out[:at], append([]Phoneme{{Symbol: "AH", Stress: StressPrimary}}, out[at:]...)...)
		return out
	}
	target := idx[len(idx)-1]
	if len(idx) > 1 && !stressLast {
		target = idx[len(idx)-2]
	}
	out[target].Stress = StressPrimary
	return out
}
