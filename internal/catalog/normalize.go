package catalog

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/la-fiesta/storefront/internal/domain"
)

// assetsRoot is the conventional local folder product images resolve to when
// the source supplies a bare filename or nothing at all.
const assetsRoot = "./src"

// Field alias tables. Source spreadsheets are hand-edited by shop staff and
// mix Spanish and English headers in either casing; for each canonical field
// the first alias present in the record wins.
var (
	idKeys          = []string{"id", "ID", "Id"}
	nameKeys        = []string{"name", "Nombre", "nombre"}
	priceKeys       = []string{"price", "Precio", "precio", "Price"}
	descriptionKeys = []string{"description", "Descripcion", "descripcion", "short"}
	categoryKeys    = []string{"category", "Categoria", "categoria"}
	imageKeys       = []string{"image", "Imagen", "imagen", "Image"}
	promoKeys       = []string{"promo", "Promo", "oferta", "Oferta"}
	promoEndKeys    = []string{"promoEnd", "promo_end", "PromoVence", "promoVence", "vence", "Vence"}
)

var (
	numberTail    = regexp.MustCompile(`^-?\d*\.?\d+`)
	extensionTail = regexp.MustCompile(`\.[a-zA-Z0-9]{2,5}$`)

	// descriptionPolicy strips any markup that sneaks into description cells.
	descriptionPolicy = bluemonday.StrictPolicy()
)

// ParsePrice converts a value of unknown shape into a price. It accepts raw
// numbers as well as strings carrying currency symbols, thousands separators
// or a comma decimal separator, and returns 0 instead of failing:
// spreadsheets are hand-edited and a malformed cell must never block the
// catalog.
func ParsePrice(raw any) float64 {
	if raw == nil {
		return 0
	}

	s := strings.Join(strings.Fields(fmt.Sprint(raw)), "")
	if s == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	// Comma-as-decimal locale convention: only the first comma is treated as
	// a decimal separator.
	cleaned := strings.Replace(b.String(), ",", ".", 1)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		// Fall back to the longest numeric prefix, mirroring how permissive
		// float parsing behaves on values like "1.234.56".
		prefix := numberTail.FindString(cleaned)
		if prefix == "" {
			return 0
		}
		if v, err = strconv.ParseFloat(prefix, 64); err != nil {
			return 0
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Slugify lowercases the text, strips diacritics and collapses every run of
// characters outside [a-z0-9] into a single hyphen. It is deterministic and
// idempotent, and is used to derive a best-guess image filename from a
// product name.
func Slugify(text string) string {
	replaced := strings.NewReplacer("ñ", "n", "Ñ", "n").Replace(text)

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, replaced)
	if err != nil {
		folded = replaced
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// NormalizeProduct maps one raw record into a canonical Product. The
// fallback id is the record's 1-based position in the source. The function
// is total: any input shape, including nil and empty records, produces a
// fully populated product.
func NormalizeProduct(raw map[string]any, fallbackID int) domain.Product {
	name := strings.TrimSpace(stringField(raw, nameKeys))
	description := cleanText(stringField(raw, descriptionKeys))

	priceRaw, _ := fieldValue(raw, priceKeys)
	price := ParsePrice(priceRaw)
	if price < 0 {
		price = 0
	}

	category := strings.TrimSpace(stringField(raw, categoryKeys))
	if category == "" {
		category = domain.CategoryNone
	}

	id := strings.TrimSpace(stringField(raw, idKeys))
	if id == "" {
		id = strconv.Itoa(fallbackID)
	}

	var promo *float64
	if v, ok := fieldValue(raw, promoKeys); ok {
		if parsed := ParsePrice(v); parsed > 0 {
			promo = &parsed
		}
	}

	return domain.Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Short:       description,
		Description: description,
		Category:    category,
		Image:       resolveImage(stringField(raw, imageKeys), name),
		Promo:       promo,
		PromoEnd:    strings.TrimSpace(stringField(raw, promoEndKeys)),
	}
}

// resolveImage applies the image-path policy: absolute URLs and explicitly
// relative paths pass through, bare filenames land under the assets root, and
// anything without a recognisable extension gets ".jpg" appended.
func resolveImage(raw, name string) string {
	image := strings.TrimSpace(raw)
	switch {
	case image == "":
		image = assetsRoot + "/" + Slugify(name) + ".jpg"
	case isURL(image):
	case strings.HasPrefix(image, "./") || strings.HasPrefix(image, "/"):
	case strings.HasPrefix(image, "src/"):
		image = "./" + image
	default:
		image = assetsRoot + "/" + image
	}

	if !isURL(image) && !extensionTail.MatchString(image) {
		image += ".jpg"
	}
	return image
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// fieldValue probes the ordered alias keys and returns the first value that
// is present and non-nil.
func fieldValue(raw map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]any, keys []string) string {
	v, ok := fieldValue(raw, keys)
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// cleanText strips markup from hand-edited cells and undoes the entity
// escaping the sanitizer applies to plain text.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(s)))
}
