package service

import (
	"math"
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// EvaluateLateness computes whether a submission at the given time is late
// and the point penalty it carries. The penalty is a point deduction, never a
// percentage, so the final-score formula stays linear and auditable.
//
// Hours late are the ceiling of the fractional hours past the deadline: a
// submission one minute late already pays for a full hour. Past max_late_hours
// the penalty equals max_score, which zeroes the submission after clamping.
func EvaluateLateness(project models.Project, submittedAt time.Time) (isLate bool, penalty float64) {
	if !project.IsPastDeadline(submittedAt) {
		return false, 0
	}

	hoursLate := math.Ceil(submittedAt.Sub(project.Deadline).Hours())

	if project.MaxLateHours != nil && hoursLate > float64(*project.MaxLateHours) {
		return true, project.MaxScore
	}

	penalty = project.LatePenaltyPerHour * hoursLate
	if penalty > project.MaxScore {
		penalty = project.MaxScore
	}

	return true, penalty
}

// FinalScore applies the grading formula: raw plus bonus, minus deductions
// and the late penalty, clamped to [0, maxScore].
func FinalScore(rawScore, bonusPoints, deductions, latePenalty, maxScore float64) float64 {
	score := rawScore + bonusPoints - deductions - latePenalty
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
