package knowledge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Embeddings are stored in the knowledge table as a bracketed,
// comma-separated float list ("[0.12, -0.34, ...]") — the textual form the
// upload pipeline has always written. DecodeEmbedding is the one place that
// format is interpreted.

// DataError reports a malformed stored embedding. Callers skip the offending
// row rather than failing the whole scan.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "knowledge: " + e.Reason
}

// IsDataError reports whether err is a stored-data problem.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// DecodeEmbedding parses the stored textual encoding into a vector.
func DecodeEmbedding(raw string) ([]float64, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, &DataError{Reason: "embedding is not a bracketed list"}
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return nil, &DataError{Reason: "embedding is empty"}
	}

	parts := strings.Split(s, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &DataError{Reason: fmt.Sprintf("embedding element %d is not a number", i)}
		}
		vec[i] = f
	}
	return vec, nil
}

// EncodeEmbedding renders a vector in the stored textual encoding.
func EncodeEmbedding(vec []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}
