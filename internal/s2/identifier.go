// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"regexp"
	"strings"
)

// Identifier patterns accepted by the paper lookup endpoint. Anything
// that does not match is treated as a free-text title.
var (
	// sha40Pattern matches native Semantic Scholar paper IDs.
	sha40Pattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

	// arxivIDPattern matches bare arXiv IDs: "2301.07041", "1706.03762v5".
	arxivIDPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}(?:v\d+)?$`)

	// doiPattern matches DOIs: "10.1145/1234567.1234568".
	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

	// corpusPattern matches "CorpusId:123456".
	corpusPattern = regexp.MustCompile(`^(?i)corpusid:\d+$`)
)

// ClassifyIdentifier reports whether the query is a strict paper
// identifier rather than a title, and returns the form the lookup
// endpoint expects. Bare arXiv IDs and DOIs gain their API prefix;
// already-prefixed forms (ARXIV:, DOI:, CorpusId:) pass through.
func ClassifyIdentifier(query string) (string, bool) {
	q := strings.TrimSpace(query)

	if sha40Pattern.MatchString(q) {
		return q, true
	}
	if arxivIDPattern.MatchString(q) {
		return "ARXIV:" + q, true
	}
	if m := strings.TrimPrefix(q, "arXiv:"); m != q && arxivIDPattern.MatchString(m) {
		return "ARXIV:" + m, true
	}
	if doiPattern.MatchString(q) {
		return "DOI:" + q, true
	}
	if corpusPattern.MatchString(q) {
		return "CorpusId:" + q[strings.Index(q, ":")+1:], true
	}

	upper := strings.ToUpper(q)
	for _, prefix := range []string{"ARXIV:", "DOI:", "PMID:", "ACL:", "MAG:", "URL:"} {
		if strings.HasPrefix(upper, prefix) && len(q) > len(prefix) {
			return prefix + q[len(prefix):], true
		}
	}

	return q, false
}
