package fileserver

import (
	"os"
	"strconv"
	"strings"
)

type encodingVariant struct {
	encoding string
	suffix   string
}

// Preference order when a client accepts several encodings equally.
var precompressedVariants = []encodingVariant{
	{encoding: "br", suffix: ".br"},
	{encoding: "gzip", suffix: ".gz"},
}

type precompressed struct {
	encoding string
	file     *os.File
	info     os.FileInfo
}

// findPrecompressed opens the best pre-compressed sibling of fsPath the
// client accepts, or returns nil.
func findPrecompressed(fsPath, acceptEncoding string) *precompressed {
	if acceptEncoding == "" {
		return nil
	}

	accepted := parseAcceptEncoding(acceptEncoding)

	for _, v := range precompressedVariants {
		if !accepted.allows(v.encoding) {
			continue
		}

		info, err := os.Stat(fsPath + v.suffix)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		f, err := os.Open(fsPath + v.suffix)
		if err != nil {
			continue
		}

		return &precompressed{encoding: v.encoding, file: f, info: info}
	}

	return nil
}

type acceptedEncodings map[string]float64

func (a acceptedEncodings) allows(enc string) bool {
	if q, ok := a[enc]; ok {
		return q > 0
	}

	q, ok := a["*"]

	return ok && q > 0
}

// parseAcceptEncoding parses "gzip;q=0.8, br" into codings and weights.
func parseAcceptEncoding(header string) acceptedEncodings {
	out := make(acceptedEncodings)

	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")

		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if name == "" {
			continue
		}

		q := 1.0

		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}

			if v, err := strconv.ParseFloat(strings.TrimPrefix(param, "q="), 64); err == nil {
				q = v
			}
		}

		out[name] = q
	}

	return out
}
