package domain

import (
	"strings"
	"time"
)

// Request/Response Models

// EvaluationRequest is an incoming screening evaluation request. Responses
// reference question identifiers from the active symptom catalog; unknown
// identifiers are rejected before scoring.
type EvaluationRequest struct {
	// EvaluationID is optional. Clients that retry a submission should reuse
	// it so a completed evaluation is never recorded twice.
	EvaluationID       string            `json:"evaluationId,omitempty"`
	PatientID          string            `json:"patientId"`
	FirstName          string            `json:"firstName,omitempty"`
	LastName           string            `json:"lastName,omitempty"`
	DNI                string            `json:"dni,omitempty"`
	Age                int               `json:"age"`
	Gender             string            `json:"gender,omitempty"`
	FamilyHistory      bool              `json:"familyHistory"`
	AlcoholConsumption bool              `json:"alcoholConsumption"`
	FastingStatus      bool              `json:"fastingStatus"`
	Medications        []string          `json:"medications,omitempty"`
	Responses          []SymptomResponse `json:"responses"`
}

// SymptomResponse is one answered questionnaire item.
type SymptomResponse struct {
	QuestionID string `json:"questionId"`
	Answer     Answer `json:"answer"`
}

// EvaluationResponse is the payload returned for a completed evaluation.
type EvaluationResponse struct {
	EvaluationID   string         `json:"evaluationId"`
	PatientID      string         `json:"patientId"`
	Recommendation Recommendation `json:"recommendation"`
	Source         string         `json:"source"`
	ProcessingTime time.Duration  `json:"processingTime"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Core Data Models

// PatientAttributes carries the demographic and anamnesis facts that rules can
// test in addition to questionnaire answers.
type PatientAttributes struct {
	PatientID          string   `json:"patientId"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	DNI                string   `json:"dni,omitempty"`
	Age                int      `json:"age"`
	Gender             string   `json:"gender,omitempty"`
	FamilyHistory      bool     `json:"familyHistory"`
	AlcoholConsumption bool     `json:"alcoholConsumption"`
	FastingStatus      bool     `json:"fastingStatus"`
	Medications        []string `json:"medications,omitempty"`
}

// Attributes extracts the patient attributes from the request.
func (r *EvaluationRequest) Attributes() *PatientAttributes {
	return &PatientAttributes{
		PatientID:          r.PatientID,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		DNI:                r.DNI,
		Age:                r.Age,
		Gender:             r.Gender,
		FamilyHistory:      r.FamilyHistory,
		AlcoholConsumption: r.AlcoholConsumption,
		FastingStatus:      r.FastingStatus,
		Medications:        r.Medications,
	}
}

// ResponseSet is a validated, deduplicated view over a patient's answers,
// keyed by question id. Build one with NewResponseSet; a zero value treats
// every question as unanswered.
type ResponseSet struct {
	answers map[string]Answer
}

// NewResponseSet indexes responses by question id. A repeated question id
// keeps the last answer given.
func NewResponseSet(responses []SymptomResponse) *ResponseSet {
	answers := make(map[string]Answer, len(responses))
	for _, r := range responses {
		answers[r.QuestionID] = r.Answer
	}
	return &ResponseSet{answers: answers}
}

// Answer returns the recorded answer for a question and whether one exists.
func (rs *ResponseSet) Answer(questionID string) (Answer, bool) {
	if rs == nil || rs.answers == nil {
		return "", false
	}
	a, ok := rs.answers[questionID]
	return a, ok
}

// Affirmed reports whether the question was answered with one of its
// affirmative tokens. Missing answers and unrecognized tokens are negative.
// Token comparison is case-insensitive.
func (rs *ResponseSet) Affirmed(q *Question) bool {
	if q == nil {
		return false
	}
	a, ok := rs.Answer(q.ID)
	if !ok {
		return false
	}
	for _, tok := range q.AffirmativeTokens() {
		if strings.EqualFold(string(a), tok) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct answered questions.
func (rs *ResponseSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.answers)
}

// QuestionIDs returns the answered question ids in unspecified order.
func (rs *ResponseSet) QuestionIDs() []string {
	if rs == nil {
		return nil
	}
	ids := make([]string, 0, len(rs.answers))
	for id := range rs.answers {
		ids = append(ids, id)
	}
	return ids
}

// CategoryScores maps a clinical category to the summed weight of its affirmed
// symptoms for one evaluation.
type CategoryScores map[Category]float64

// Total returns the sum across all categories.
func (s CategoryScores) Total() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Recommendation is the clinical decision produced by the resolver. Reasoning
// carries the justification of each matched rule, in match order, parallel to
// MatchedRules. The study and medication lists are only populated when a
// disease pattern was detected; the list fields always serialize as arrays.
type Recommendation struct {
	TestType            TestType   `json:"testType"`
	Confidence          Confidence `json:"confidence"`
	Message             string     `json:"message"`
	Score               float64    `json:"score"`
	CriticalSymptoms    int        `json:"criticalSymptoms"`
	Pattern             Pattern    `json:"pattern,omitempty"`
	MatchedRules        []string   `json:"matchedRules"`
	Reasoning           []string   `json:"reasoning"`
	RiskFactors         []string   `json:"riskFactors"`
	RecommendedStudies  []string   `json:"estudiosRecomendados"`
	ContraindicatedMeds []string   `json:"medicamentosContraproducentes"`
}

// NormalizeLists replaces nil list fields with empty slices so the JSON form
// carries arrays, never null.
func (r *Recommendation) NormalizeLists() {
	if r.MatchedRules == nil {
		r.MatchedRules = []string{}
	}
	if r.Reasoning == nil {
		r.Reasoning = []string{}
	}
	if r.RiskFactors == nil {
		r.RiskFactors = []string{}
	}
	if r.RecommendedStudies == nil {
		r.RecommendedStudies = []string{}
	}
	if r.ContraindicatedMeds == nil {
		r.ContraindicatedMeds = []string{}
	}
}

// RuleResult is the outcome of evaluating a single rule.
type RuleResult struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Weight   float64  `json:"weight"`
	Matched  bool     `json:"matched"`
	Critical bool     `json:"critical"`
	Pattern  Pattern  `json:"pattern,omitempty"`
	Evidence string   `json:"evidence,omitempty"`
}

// Database Models

// EvaluationRecord is a stored evaluation with its recommendation, kept for
// audit and longitudinal patient review.
type EvaluationRecord struct {
	ID             string            `json:"id"`
	PatientID      string            `json:"patientId"`
	Scheme         Scheme            `json:"scheme"`
	Attributes     PatientAttributes `json:"attributes"`
	Responses      []SymptomResponse `json:"responses"`
	Recommendation Recommendation    `json:"recommendation"`
	Source         string            `json:"source"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Medicine Models

// Medicine is one entry of the trigger-medication registry consulted when a
// recommendation lists contraindicated drug classes.
type Medicine struct {
	Class       string `json:"class"`
	Type        string `json:"type"`
	GenericName string `json:"genericName"`
	BrandName   string `json:"brandName,omitempty"`
	Conclusion  string `json:"conclusion"`
	References  string `json:"references,omitempty"`
}
