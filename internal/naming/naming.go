// Package naming derives identifiers and display names from asset filenames.
//
// The frames and sounds jobs share these rules so a GIF and a sound with the
// same stem produce the same id.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separatorRun  = regexp.MustCompile(`[_ ]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9\-]`)
	dashRun       = regexp.MustCompile(`-{2,}`)
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	wordBreak     = regexp.MustCompile(`[-_]+`)
)

// Stem returns the filename without directory or final extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Ext returns the final extension without the leading dot, case preserved.
func Ext(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// Slug turns a filename into a lower-case, dash separated identifier.
//
//	"326143__mackaffee__fart.mp3" -> "326143-mackaffee-fart"
//	"bouncing-butt-II.gif"        -> "bouncing-butt-ii"
func Slug(filename string) string {
	slug := strings.ToLower(Stem(filename))
	slug = separatorRun.ReplaceAllString(slug, "-")
	slug = disallowed.ReplaceAllString(slug, "")
	slug = dashRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// DisplayName turns a filename into a title-cased label. Only the first
// letter of each word changes, so "II" and "F8Sw6fv" survive intact.
//
//	"easterBunny.gif" -> "Easter Bunny"
func DisplayName(filename string) string {
	spaced := camelBoundary.ReplaceAllString(Stem(filename), "$1 $2")
	spaced = wordBreak.ReplaceAllString(spaced, " ")
	words := strings.Fields(spaced)
	caser := cases.Title(language.Und, cases.NoLower)
	for i, word := range words {
		words[i] = titleFirst(caser, word)
	}
	return strings.Join(words, " ")
}

// titleFirst upper-cases the first rune of word and leaves the rest alone.
func titleFirst(caser cases.Caser, word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 || !unicode.IsLetter(r) {
		return word
	}
	return caser.String(word[:size]) + word[size:]
}

// FileKey is the manifest match key for a file stem and extension.
func FileKey(file, ext string) string {
	return file + "." + ext
}
