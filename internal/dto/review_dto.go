package dto

// ReviewRequest carries an admin's grading verdict for a submission. The late
// penalty is never part of this payload; it was fixed at submission time.
type ReviewRequest struct {
	Status      string  `json:"status" validate:"required,oneof=accepted rejected reviewed"`
	RawScore    float64 `json:"raw_score" validate:"gte=0"`
	BonusPoints float64 `json:"bonus_points" validate:"gte=0"`
	Deductions  float64 `json:"deductions" validate:"gte=0"`
	Feedback    string  `json:"feedback"`
}
