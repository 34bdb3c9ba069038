package matching

// DTOs for API requests/responses

type CreateMatchRequestDTO struct {
	TargetUserID int64 `json:"target_user_id" validate:"required,gt=0"`
}

type RespondMatchRequestDTO struct {
	Decision string `json:"decision" validate:"required,oneof=accept decline"`
}

// CandidatesResponse carries the explicit eligibility indicator so a
// caller can tell "matching disabled" apart from "no candidates".
type CandidatesResponse struct {
	Eligible   bool               `json:"eligible"`
	Candidates []*CandidateResult `json:"candidates"`
}
