package model

// CompositeOutcome is derived from score records through the weighting table.
// It is recomputed on demand and never stored apart from its inputs.
type CompositeOutcome struct {
	Value           int              `json:"value" bson:"value"` // 0-100
	WeightedAverage float64          `json:"weightedAverage" bson:"weightedAverage"`
	MaxScore        float64          `json:"maxScore" bson:"maxScore"`
	Dimensions      []TraitDimension `json:"dimensions" bson:"dimensions"` // weighted dimensions that contributed
}
