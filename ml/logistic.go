package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
)

// LogisticModel is the fitted binary classifier artifact. PredictProba returns
// the probability of the positive ("is exoplanet") class.
type LogisticModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Threshold is the fixed decision boundary; there is no serving-time tuning.
const Threshold = 0.5

func (m *LogisticModel) PredictProba(vector []float64) (float64, error) {
	if len(m.Weights) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(vector) != len(m.Weights) {
		return 0, &ArtifactMismatchError{Stage: "model", Expected: len(m.Weights), Got: len(vector)}
	}
	z := m.Intercept
	for i, w := range m.Weights {
		z += w * vector[i]
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func (m *LogisticModel) Save(path string) error {
	if len(m.Weights) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *LogisticModel) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LogisticModel
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	*m = loaded
	return nil
}
