package knowledge

import "math"

// Row is one stored knowledge-base fact with its encoded embedding.
type Row struct {
	Content   string
	Embedding string
}

// Match is the ranker's best candidate. A Score of NoMatchScore means no
// valid candidate was found.
type Match struct {
	Content string
	Score   float64
}

// NoMatchScore sits below any real cosine similarity, which is bounded to [-1, 1].
const NoMatchScore = -1.0

// BestMatch scans rows in order and returns the candidate whose decoded
// embedding has the highest cosine similarity with the query vector. Rows
// whose embedding fails to decode or whose length differs from the query are
// skipped. Exact ties keep the first-seen candidate.
func BestMatch(query []float64, rows []Row) Match {
	best := Match{Score: NoMatchScore}
	for _, row := range rows {
		vec, err := DecodeEmbedding(row.Embedding)
		if err != nil {
			continue
		}
		if len(vec) != len(query) {
			continue
		}
		if score := CosineSimilarity(query, vec); score > best.Score {
			best = Match{Content: row.Content, Score: score}
		}
	}
	return best
}

// CosineSimilarity computes dot(a,b) / (|a|·|b|). Zero-norm or
// length-mismatched inputs yield 0, which is treated as a non-match.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
