// Package content defines the application's core content-related domain entities.
package content

// RoadmapColor is the accent a roadmap is drawn with.
type RoadmapColor string

const (
	ColorAccent    RoadmapColor = "accent"
	ColorHighlight RoadmapColor = "highlight"
	ColorPrimary   RoadmapColor = "primary"
)

type Roadmap struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Icon        string       `json:"icon" yaml:"icon"`
	Color       RoadmapColor `json:"color" yaml:"color"`
	Duration    string       `json:"duration" yaml:"duration"`
	Phases      []Phase      `json:"phases" yaml:"phases"`
}

type Phase struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Steps       []Step `json:"steps" yaml:"steps"`
	Reflection  string `json:"reflection" yaml:"reflection"`
}

type Step struct {
	Title            string `json:"title" yaml:"title"`
	Instruction      string `json:"instruction" yaml:"instruction"`
	Focus            string `json:"focus" yaml:"focus"`
	Avoid            string `json:"avoid" yaml:"avoid"`
	CommonMistake    string `json:"commonMistake" yaml:"commonMistake"`
	CompletionSignal string `json:"completionSignal" yaml:"completionSignal"`
}

// TotalSteps is the sum of every phase's step count.
func (r *Roadmap) TotalSteps() int {
	total := 0
	for _, phase := range r.Phases {
		total += len(phase.Steps)
	}
	return total
}

// PhaseStepCount returns the number of steps in a phase, or 0 when the
// index is out of range.
func (r *Roadmap) PhaseStepCount(phaseIndex int) int {
	if phaseIndex < 0 || phaseIndex >= len(r.Phases) {
		return 0
	}
	return len(r.Phases[phaseIndex].Steps)
}

// HasStep reports whether (phaseIndex, stepIndex) addresses a real step.
func (r *Roadmap) HasStep(phaseIndex, stepIndex int) bool {
	return stepIndex >= 0 && stepIndex < r.PhaseStepCount(phaseIndex)
}

type ResourceCategory struct {
	Category    string         `json:"category" yaml:"category"`
	Description string         `json:"description" yaml:"description"`
	Icon        string         `json:"icon" yaml:"icon"`
	Items       []ResourceItem `json:"items" yaml:"items"`
}

type ResourceItem struct {
	Title            string `json:"title" yaml:"title"`
	Purpose          string `json:"purpose" yaml:"purpose"`
	HowToUse         string `json:"howToUse" yaml:"howToUse"`
	ActionableAdvice string `json:"actionableAdvice" yaml:"actionableAdvice"`
}

type AppHubCategory struct {
	Category string       `json:"category" yaml:"category"`
	Items    []AppHubItem `json:"items" yaml:"items"`
}

type AppHubItem struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Steps       []string `json:"steps" yaml:"steps"`
}

// Catalog is one immutable version of all authored content.
type Catalog struct {
	Roadmaps  []Roadmap          `json:"roadmaps" yaml:"roadmaps"`
	Resources []ResourceCategory `json:"resources" yaml:"resources"`
	AppHub    []AppHubCategory   `json:"appHub" yaml:"appHub"`
}

// Roadmap looks up a roadmap by id.
func (c *Catalog) Roadmap(id string) (*Roadmap, bool) {
	for i := range c.Roadmaps {
		if c.Roadmaps[i].ID == id {
			return &c.Roadmaps[i], true
		}
	}
	return nil, false
}
