package parser

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// languageDrivers maps the dBase language driver byte to a code page.
// Unlisted ids fall back to UTF-8.
var languageDrivers = map[byte]encoding.Encoding{
	0x01: charmap.CodePage437,
	0x02: charmap.CodePage850,
	0x03: charmap.Windows1252,
	0x08: charmap.CodePage865,
	0x24: charmap.CodePage860,
	0x26: charmap.CodePage866,
	0x37: charmap.CodePage850,
	0x57: charmap.Windows1252,
	0x64: charmap.CodePage852,
	0x65: charmap.CodePage866,
	0x66: charmap.CodePage865,
	0x6A: charmap.CodePage737,
	0x6B: charmap.CodePage857,
	0x7D: charmap.Windows1255,
	0x7E: charmap.Windows1256,
	0xC8: charmap.Windows1250,
	0xC9: charmap.Windows1251,
	0xCA: charmap.Windows1254,
	0xCB: charmap.Windows1253,
}

// LanguageDriverEncoding returns the encoding for a dBase language driver id,
// or nil when the id is zero or unknown.
func LanguageDriverEncoding(id byte) encoding.Encoding {
	return languageDrivers[id]
}

// CodePageEncoding resolves the contents of a .cpg file ("UTF-8", "1252",
// "ISO-8859-1", "CP1251"...). UTF-8 resolves to nil, meaning bytes are used as-is.
func CodePageEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	upper := strings.ToUpper(name)
	switch upper {
	case "UTF-8", "UTF8", "65001":
		return nil, nil
	}
	upper = strings.TrimPrefix(upper, "CP")

	if isDigits(upper) {
		switch {
		case strings.HasPrefix(upper, "8859"):
			upper = "ISO-8859-" + strings.TrimPrefix(upper, "8859")
		case len(upper) == 4 && strings.HasPrefix(upper, "125"):
			upper = "windows-" + upper
		default:
			upper = "IBM" + upper
		}
	}

	enc, err := ianaindex.IANA.Encoding(upper)
	if err != nil {
		return nil, errors.Wrapf(err, "code page %q", name)
	}
	if enc == nil {
		return nil, errors.Errorf("code page %q has no decoder", name)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
