// Package optimization provides shared data structures for solver results.
package optimization

// Summary captures the result of a single solver directive: the input value
// at which a result metric reaches its target.
type Summary struct {
	Scenario        string   `json:"scenario" yaml:"scenario"`
	Field           string   `json:"field" yaml:"field"`
	Metric          string   `json:"metric" yaml:"metric"`
	Target          float64  `json:"target" yaml:"target"`
	Original        float64  `json:"original" yaml:"original"`
	Value           float64  `json:"value" yaml:"value"`
	Achieved        float64  `json:"achieved" yaml:"achieved"`
	Iterations      int      `json:"iterations" yaml:"iterations"`
	Converged       bool     `json:"converged" yaml:"converged"`
	Notes           []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	OriginalDisplay string   `json:"originalDisplay,omitempty" yaml:"originalDisplay,omitempty"`
	ValueDisplay    string   `json:"valueDisplay,omitempty" yaml:"valueDisplay,omitempty"`
}

// Delta is the change from the scenario's own input to the solved value.
func (s Summary) Delta() float64 {
	return s.Value - s.Original
}
