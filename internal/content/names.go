package content

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameHeads = []string{
	"bram", "edda", "finn", "orla", "tam", "wen", "ash", "morr",
	"hale", "ives", "pell", "rook", "sorrel", "thea", "ulf", "vesper",
}

var nameTails = []string{
	"wick", "mere", "ley", "thorn", "brook", "fell", "garth", "holt",
	"combe", "den", "worth", "shaw",
}

var nameTitle = cases.Title(language.English)

// PawnName builds a display name from two random draws.
// Equal draws always produce the same name.
func PawnName(a, b uint64) string {
	head := nameHeads[a%uint64(len(nameHeads))]
	tail := nameTails[b%uint64(len(nameTails))]
	return nameTitle.String(head + tail)
}
