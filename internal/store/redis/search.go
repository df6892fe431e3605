package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/wardesk/faqdex/internal/domain"
)

// Query runs a KNN vector similarity search via FT.SEARCH.
// __vector_score is the raw cosine distance, passed through unchanged.
func (s *Store) Query(
	ctx context.Context, vector []float32, limit int, filter *domain.Filter,
) ([]domain.ScoredMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("redis: query vector is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("redis: limit must be positive")
	}

	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB]", limit, fieldVector)
	queryStr := "*=>" + knnPart
	if filter != nil && filter.Category != "" {
		queryStr = fmt.Sprintf("(@%s:{%s})=>%s", fieldCategory, tagEscaper.Replace(filter.Category), knnPart)
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(
		s.index, queryStr,
		"LIMIT", "0", strconv.Itoa(limit),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	).Build()

	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("redis: knn search: %w", err)
	}

	return s.parseKNNResult(raw)
}

// parseKNNResult decodes the RESP2 reply: [total, key1, fields1, key2, fields2, ...].
func (s *Store) parseKNNResult(raw []rueidis.RedisMessage) ([]domain.ScoredMatch, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("redis: parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	prefix := s.docKey("")
	matches := make([]domain.ScoredMatch, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		match := domain.ScoredMatch{
			StoredDoc: docFromFields(strings.TrimPrefix(key, prefix), fields),
		}
		if scoreStr, ok := fields["__"+fieldVector+"_score"]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				match.Distance = d
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// tagEscaper escapes RediSearch TAG special characters in filter values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
