package service

import (
	"strings"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// DefaultSimilarityThreshold is the percentage above which a submission is
// rejected as a likely duplicate.
const DefaultSimilarityThreshold = 80.0

// ScreenResult summarizes a similarity screen against peer submissions.
type ScreenResult struct {
	MaxSimilarity float64
	Flagged       bool
	Findings      []models.SimilarityFinding
}

// ScreenContent compares the new content against every peer submission for
// the same project and records a finding per pair, flagged or not. The
// metric is the share of the new submission's normalized lines that also
// appear in the peer's content. The threshold and the hard-block policy are
// the contract; the metric itself is a heuristic.
func ScreenContent(content string, peers []models.Submission, threshold float64) ScreenResult {
	result := ScreenResult{}
	newLines := normalizeLines(content)

	for _, peer := range peers {
		similarity := lineOverlapPercent(newLines, normalizeLines(peer.Content()))
		flagged := similarity > threshold

		result.Findings = append(result.Findings, models.SimilarityFinding{
			PeerSubmissionID: peer.ID,
			Similarity:       similarity,
			Flagged:          flagged,
		})

		if similarity > result.MaxSimilarity {
			result.MaxSimilarity = similarity
		}
		if flagged {
			result.Flagged = true
		}
	}

	return result
}

// normalizeLines lowercases, trims and deduplicates the non-blank lines of a
// submission body.
func normalizeLines(content string) map[string]struct{} {
	lines := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		normalized := strings.ToLower(strings.Join(strings.Fields(line), " "))
		if normalized == "" {
			continue
		}
		lines[normalized] = struct{}{}
	}
	return lines
}

func lineOverlapPercent(newLines, peerLines map[string]struct{}) float64 {
	if len(newLines) == 0 {
		return 0
	}

	shared := 0
	for line := range newLines {
		if _, ok := peerLines[line]; ok {
			shared++
		}
	}

	return 100 * float64(shared) / float64(len(newLines))
}
