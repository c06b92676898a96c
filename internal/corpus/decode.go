package corpus

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText returns content as UTF-8 text. A leading byte-order mark is
// stripped (a UTF-16 BOM switches the decoder to UTF-16) and invalid
// sequences are replaced with U+FFFD.
func decodeText(content []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
