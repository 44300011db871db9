package ai

// Prediction is the classifier output for one text.
type Prediction struct {
	// Label is 1 for job related mail and 0 otherwise.
	Label int

	// Probability is the model's confidence that the text is job related.
	// Nil when the model only produces a hard label.
	Probability *float64
}

// Attributes are the structured fields of a job-related message.
type Attributes struct {
	CompanyName     string `json:"company_name"`
	PositionApplied string `json:"position_applied"`
	ApplicationDate string `json:"application_date"`
}

// NewPrediction returns a Prediction carrying both label and probability.
func NewPrediction(label int, probability float64) Prediction {
	return Prediction{Label: label, Probability: &probability}
}
