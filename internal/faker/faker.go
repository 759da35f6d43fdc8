// Package faker renders the built-in faker.* string generators spec.md §4.1
// references from "type": "string", "faker": {...} nodes. Every generator
// draws exclusively from the supplied *randsrc.Source so output stays
// reproducible for a given seed.
package faker

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/idgen"
	"github.com/alfredjeanlab/synth/internal/randsrc"
)

// Generate dispatches to the named generator. locale is accepted for every
// generator but does not change the output: every locale, recognized or
// not, draws from the same corpus (see localizedFirstNames), and no locale
// value is an error.
func Generate(src *randsrc.Source, path, generator, locale string, args map[string]string) (string, error) {
	switch generator {
	case "first_name":
		return pick(src, localizedFirstNames(locale)), nil
	case "last_name":
		return pick(src, lastNames), nil
	case "name":
		return pick(src, localizedFirstNames(locale)) + " " + pick(src, lastNames), nil
	case "username":
		return strings.ToLower(pick(src, localizedFirstNames(locale)) + "." + pick(src, lastNames)), nil
	case "safe_email", "email":
		local := strings.ToLower(pick(src, localizedFirstNames(locale)) + "." + pick(src, lastNames))
		return fmt.Sprintf("%s@%s", local, pick(src, domains)), nil
	case "word":
		return pick(src, words), nil
	case "sentence":
		return sentence(src, wordCountArg(args, 6)), nil
	case "paragraph":
		var sb strings.Builder
		n := wordCountArg(args, 4)
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(sentence(src, 6+src.IntRangeInt(0, 6)))
		}
		return sb.String(), nil
	case "city":
		return pick(src, cities), nil
	case "country":
		return pick(src, countries), nil
	case "street_address":
		return fmt.Sprintf("%d %s %s", 1+src.IntRangeInt(0, 9998), pick(src, lastNames), pick(src, streetSuffixes)), nil
	case "company":
		return pick(src, lastNames) + " " + pick(src, companySuffixes), nil
	case "domain":
		return strings.ToLower(pick(src, lastNames)) + "." + pick(src, tlds), nil
	case "phone_number":
		return fmt.Sprintf("+1-%03d-%03d-%04d", 200+src.IntRangeInt(0, 799), src.IntRangeInt(0, 999), src.IntRangeInt(0, 9999)), nil
	case "ipv4":
		return fmt.Sprintf("%d.%d.%d.%d", src.IntRangeInt(1, 255), src.IntRangeInt(0, 255), src.IntRangeInt(0, 255), src.IntRangeInt(1, 255)), nil
	case "slug", "nanoid":
		length := 10
		if raw, ok := args["length"]; ok {
			fmt.Sscanf(raw, "%d", &length)
		}
		return idgen.GenerateDeterministic(src, idgen.Alphabet, length), nil
	case "filesize":
		bytes := uint64(src.IntRange(1, 1<<40))
		return humanize.Bytes(bytes), nil
	case "ordinal":
		return humanize.Ordinal(1 + src.IntRangeInt(0, 999)), nil
	case "comma_number":
		return humanize.Comma(src.IntRange(0, 1_000_000_000)), nil
	default:
		return "", errkit.Configuration(path, "unrecognized faker generator %q", generator)
	}
}

func pick(src *randsrc.Source, list []string) string {
	return list[src.IntRangeInt(0, len(list))]
}

func sentence(src *randsrc.Source, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = pick(src, words)
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func wordCountArg(args map[string]string, def int) int {
	if raw, ok := args["words"]; ok {
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// localizedFirstNames returns the first-name pool for a locale. Every locale
// shares the same pool; the locale argument is ignored.
func localizedFirstNames(_ string) []string {
	return firstNames
}
