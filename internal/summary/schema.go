package summary

import (
	"encoding/json"
	"fmt"
)

// Schema versions the generator knows how to decode. Prompt assets may lag
// or lead these; both sides must agree before a version can ship.
const (
	SchemaVersion12 = "1.2"
	SchemaVersion13 = "1.3"
)

// Structured is a parsed, schema-versioned clinical summary. A re-run
// replaces it wholesale; it is never partially updated.
type Structured interface {
	SchemaVersion() string
	SummaryTitle() string
	validate() error
}

// Shared nested shapes.

type ReasonForVisit struct {
	Reason      string `json:"reason" firestore:"reason"`
	Description string `json:"description" firestore:"description"`
}

type Diagnosis struct {
	Details []DiagnosisDetail `json:"details" firestore:"details"`
}

type DiagnosisDetail struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Severity    string `json:"severity,omitempty" firestore:"severity,omitempty"`
}

type FollowUp struct {
	Description string `json:"description" firestore:"description"`
	TimeFrame   string `json:"time_frame" firestore:"time_frame"`
}

// V12 shapes (intermediate "title+todos" schema generation).

type Todo struct {
	Type        string `json:"type" firestore:"type"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Recommended bool   `json:"recommended" firestore:"recommended"`
	Verified    bool   `json:"verified" firestore:"verified"`
	Dosage      string `json:"dosage,omitempty" firestore:"dosage,omitempty"`
	Frequency   string `json:"frequency,omitempty" firestore:"frequency,omitempty"`
	Timing      string `json:"timing,omitempty" firestore:"timing,omitempty"`
	Duration    string `json:"duration,omitempty" firestore:"duration,omitempty"`
	Timeframe   string `json:"timeframe,omitempty" firestore:"timeframe,omitempty"`
}

type Learning struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
}

// V13 shapes (current "diagnosis+plan" schema generation).

type Test struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Importance  string `json:"importance" firestore:"importance"`
	Source      string `json:"source,omitempty" firestore:"source,omitempty"`
}

type Medication struct {
	Title        string `json:"title" firestore:"title"`
	Dosage       string `json:"dosage,omitempty" firestore:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty" firestore:"frequency,omitempty"`
	Timing       string `json:"timing,omitempty" firestore:"timing,omitempty"`
	Duration     string `json:"duration,omitempty" firestore:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty" firestore:"instructions,omitempty"`
	Importance   string `json:"importance" firestore:"importance"`
	Source       string `json:"source,omitempty" firestore:"source,omitempty"`
	Change       bool   `json:"change,omitempty" firestore:"change,omitempty"`
}

type Procedure struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Timeframe   string `json:"timeframe,omitempty" firestore:"timeframe,omitempty"`
	Importance  string `json:"importance" firestore:"importance"`
	Source      string `json:"source,omitempty" firestore:"source,omitempty"`
}

type OtherItem struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Dosage      string `json:"dosage,omitempty" firestore:"dosage,omitempty"`
	Frequency   string `json:"frequency,omitempty" firestore:"frequency,omitempty"`
	Timing      string `json:"timing,omitempty" firestore:"timing,omitempty"`
	Duration    string `json:"duration,omitempty" firestore:"duration,omitempty"`
	Importance  string `json:"importance" firestore:"importance"`
	Source      string `json:"source,omitempty" firestore:"source,omitempty"`
}

type Risk struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Source      string `json:"source,omitempty" firestore:"source,omitempty"`
	Importance  string `json:"importance" firestore:"importance"`
}

type ActionItem struct {
	Title      string `json:"title" firestore:"title"`
	Importance string `json:"importance" firestore:"importance"`
	Source     string `json:"source,omitempty" firestore:"source,omitempty"`
}

// SummaryV12 is the intermediate schema generation: narrative summary,
// diagnosis and a flat todo list.
type SummaryV12 struct {
	Version        string           `json:"version" firestore:"version"`
	Title          string           `json:"title,omitempty" firestore:"title,omitempty"`
	Summary        string           `json:"summary" firestore:"summary"`
	ReasonForVisit []ReasonForVisit `json:"reason_for_visit,omitempty" firestore:"reason_for_visit,omitempty"`
	Diagnosis      *Diagnosis       `json:"diagnosis,omitempty" firestore:"diagnosis,omitempty"`
	Todos          []Todo           `json:"todos,omitempty" firestore:"todos,omitempty"`
	FollowUp       []FollowUp       `json:"follow_up,omitempty" firestore:"follow_up,omitempty"`
	Learnings      []Learning       `json:"learnings,omitempty" firestore:"learnings,omitempty"`
}

func (s *SummaryV12) SchemaVersion() string { return SchemaVersion12 }
func (s *SummaryV12) SummaryTitle() string  { return s.Title }

func (s *SummaryV12) validate() error {
	if s.Summary == "" {
		return fmt.Errorf("schema %s: required field \"summary\" is missing or empty", SchemaVersion12)
	}
	return nil
}

// SummaryV13 is the current schema generation: the plan is broken out into
// tests, medications, procedures and risks.
type SummaryV13 struct {
	Version          string           `json:"version" firestore:"version"`
	Title            string           `json:"title,omitempty" firestore:"title,omitempty"`
	Summary          string           `json:"summary" firestore:"summary"`
	ReasonForVisit   []ReasonForVisit `json:"reason_for_visit,omitempty" firestore:"reason_for_visit,omitempty"`
	Diagnosis        *Diagnosis       `json:"diagnosis,omitempty" firestore:"diagnosis,omitempty"`
	Tests            []Test           `json:"tests,omitempty" firestore:"tests,omitempty"`
	Medications      []Medication     `json:"medications,omitempty" firestore:"medications,omitempty"`
	Procedures       []Procedure      `json:"procedures,omitempty" firestore:"procedures,omitempty"`
	Other            []OtherItem      `json:"other,omitempty" firestore:"other,omitempty"`
	FollowUp         []FollowUp       `json:"follow_up,omitempty" firestore:"follow_up,omitempty"`
	WhyRecommended   string           `json:"why_recommended,omitempty" firestore:"why_recommended,omitempty"`
	RisksSideEffects []Risk           `json:"risks_side_effects,omitempty" firestore:"risks_side_effects,omitempty"`
	ActionTodo       []ActionItem     `json:"action_todo,omitempty" firestore:"action_todo,omitempty"`
}

func (s *SummaryV13) SchemaVersion() string { return SchemaVersion13 }
func (s *SummaryV13) SummaryTitle() string  { return s.Title }

func (s *SummaryV13) validate() error {
	if s.Summary == "" {
		return fmt.Errorf("schema %s: required field \"summary\" is missing or empty", SchemaVersion13)
	}
	return nil
}

// Decode parses raw model JSON into the typed summary for schemaVersion and
// rejects (fails closed) on type mismatches or missing required fields.
// The decoded value is tagged with the version that produced it.
func Decode(schemaVersion string, data []byte) (Structured, error) {
	var (
		s   Structured
		err error
	)

	switch schemaVersion {
	case SchemaVersion12:
		v := &SummaryV12{}
		err = json.Unmarshal(data, v)
		v.Version = SchemaVersion12
		s = v
	case SchemaVersion13:
		v := &SummaryV13{}
		err = json.Unmarshal(data, v)
		v.Version = SchemaVersion13
		s = v
	default:
		return nil, fmt.Errorf("unsupported schema version %q", schemaVersion)
	}

	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := s.validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return s, nil
}
