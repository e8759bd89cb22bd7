package oleread

import (
	"path"
	"slices"
	"strings"
	"unicode/utf16"
)

type Ordering int

const (
	OrderLess Ordering = iota
	OrderEqual
	OrderGreater
)

// CompareNames orders directory entry names the way siblings are sorted in
// the directory tree: shorter UTF-16 names first, then by uppercased UTF-16
// code units.
func CompareNames(nameLeft, nameRight string) Ordering {
	nl := len(utf16.Encode([]rune(nameLeft)))
	nr := len(utf16.Encode([]rune(nameRight)))

	if nl < nr {
		return OrderLess
	}
	if nl > nr {
		return OrderGreater
	}

	ul := utf16.Encode([]rune(strings.ToUpper(nameLeft)))
	ur := utf16.Encode([]rune(strings.ToUpper(nameRight)))
	switch c := slices.Compare(ul, ur); {
	case c < 0:
		return OrderLess
	case c > 0:
		return OrderGreater
	default:
		return OrderEqual
	}
}

func NameChainFromPath(s string) []string {
	s = path.Clean(s)
	if s == "" || s == "." {
		return []string{}
	}

	if s[0] == '/' {
		s = s[1:]
	}

	if s == "" {
		return []string{}
	}

	if strings.HasPrefix(s, "..") {
		return []string{}
	}

	return strings.Split(s, "/")
}

func PathFromNameChain(names []string) string {
	return "/" + strings.Join(names, "/")
}
