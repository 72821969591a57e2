package models

// ExtractedEntity is a named concept found in a message.
type ExtractedEntity struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ExtractedFact is a distilled, self-contained statement found in a
// message, together with the entity names it references.
type ExtractedFact struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Importance *float64 `json:"importance,omitempty"`
	Entities   []string `json:"entities"`
}

// ExtractedRelation is a subject-predicate-object triple between two
// extracted entity names.
type ExtractedRelation struct {
	Subject    string   `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     string   `json:"object"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ExtractionResult is the structured output of one extraction pass over
// one message. Empty lists are valid: not every message contains
// extractable knowledge.
type ExtractionResult struct {
	Entities  []ExtractedEntity   `json:"entities"`
	Facts     []ExtractedFact     `json:"facts"`
	Relations []ExtractedRelation `json:"relations"`
}
