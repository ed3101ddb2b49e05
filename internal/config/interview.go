package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gritinterview/internal/model"
)

// Trait selection policies
const (
	SelectionFirstAvailable = "first_available"
	SelectionSeededRandom   = "seeded_random"
)

// InterviewConfig holds the fixed tables and texts of an interview
type InterviewConfig struct {
	Traits          map[int]string   `yaml:"traits"`
	Weights         map[int]float64  `yaml:"weights"`
	Scale           model.ScoreScale `yaml:"scale"`
	MaxTurns        int              `yaml:"max_turns"`
	OpeningQuestion string           `yaml:"opening_question"`
	ClosingMessage  string           `yaml:"closing_message"`
	Selection       string           `yaml:"selection"`
	Seed            uint64           `yaml:"seed"`
}

// interviewOverrides mirrors InterviewConfig with optional fields for YAML files
type interviewOverrides struct {
	Traits          map[int]string    `yaml:"traits"`
	Weights         map[int]float64   `yaml:"weights"`
	Scale           *model.ScoreScale `yaml:"scale"`
	MaxTurns        *int              `yaml:"max_turns"`
	OpeningQuestion *string           `yaml:"opening_question"`
	ClosingMessage  *string           `yaml:"closing_message"`
	Selection       *string           `yaml:"selection"`
	Seed            *uint64           `yaml:"seed"`
}

// DefaultInterviewConfig returns the compiled-in GRIT interview tables
func DefaultInterviewConfig() *InterviewConfig {
	return &InterviewConfig{
		Traits: map[int]string{
			1:  "Handling distraction",
			2:  "Sustained interest and passion",
			3:  "Goal orientation",
			4:  "Facing adversity",
			5:  "Flexibility",
			6:  "Intrinsic motivation",
			7:  "Absorption",
			8:  "Coping with difficulty",
			9:  "Persistence",
			10: "Learning orientation",
			11: "Follow-through",
			12: "Sustained motivation",
		},
		// persistence-related traits; the composite reads as drop-out risk
		Weights: map[int]float64{
			2:  0.2,
			3:  0.2,
			4:  0.2,
			9:  0.2,
			11: 0.2,
		},
		Scale:           model.ScoreScale{Min: 1, Max: 5},
		MaxTurns:        model.TraitCount,
		OpeningQuestion: "Tell me about something you have kept working on for a long time, even when it got hard. What kept you going?",
		ClosingMessage:  "Thank you for your answers. That completes the interview; your summary is being prepared.",
		Selection:       SelectionFirstAvailable,
	}
}

// LoadInterviewConfig returns the defaults, overridden by the YAML file at path when path is set
func LoadInterviewConfig(path string) (*InterviewConfig, error) {
	cfg := DefaultInterviewConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading interview config: %w", err)
	}

	var o interviewOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing interview config: %w", err)
	}
	cfg.apply(&o)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interview config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *InterviewConfig) apply(o *interviewOverrides) {
	for d, label := range o.Traits {
		c.Traits[d] = label
	}
	// a weight table replaces the defaults as a whole
	if len(o.Weights) > 0 {
		c.Weights = o.Weights
	}
	if o.Scale != nil {
		c.Scale = *o.Scale
	}
	if o.MaxTurns != nil {
		c.MaxTurns = *o.MaxTurns
	}
	if o.OpeningQuestion != nil {
		c.OpeningQuestion = *o.OpeningQuestion
	}
	if o.ClosingMessage != nil {
		c.ClosingMessage = *o.ClosingMessage
	}
	if o.Selection != nil {
		c.Selection = *o.Selection
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
}

// Validate checks the tables are usable
func (c *InterviewConfig) Validate() error {
	if _, err := c.TraitTable(); err != nil {
		return err
	}
	if _, err := c.WeightTable(); err != nil {
		return err
	}
	if c.Scale.Min >= c.Scale.Max {
		return fmt.Errorf("score scale min %.1f must be below max %.1f", c.Scale.Min, c.Scale.Max)
	}
	if c.MaxTurns < 1 || c.MaxTurns > model.TraitCount {
		return fmt.Errorf("max_turns must be between 1 and %d", model.TraitCount)
	}
	if c.OpeningQuestion == "" {
		return fmt.Errorf("opening_question is required")
	}
	switch c.Selection {
	case SelectionFirstAvailable, SelectionSeededRandom:
	default:
		return fmt.Errorf("unknown selection policy %q", c.Selection)
	}
	return nil
}

// TraitTable builds the immutable label table
func (c *InterviewConfig) TraitTable() (*model.TraitTable, error) {
	labels := make(map[model.TraitDimension]string, len(c.Traits))
	for d, label := range c.Traits {
		labels[model.TraitDimension(d)] = label
	}
	return model.NewTraitTable(labels)
}

// WeightTable builds the immutable weighting table
func (c *InterviewConfig) WeightTable() (*model.WeightTable, error) {
	weights := make(map[model.TraitDimension]float64, len(c.Weights))
	for d, w := range c.Weights {
		weights[model.TraitDimension(d)] = w
	}
	return model.NewWeightTable(weights)
}
