package ml

import "math"

// Imputer replaces missing values with per-column medians frozen at training
// time. Inference never recomputes them.
type Imputer struct {
	Medians []float64 `json:"medians"`
}

func (im *Imputer) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(im.Medians) {
		return nil, &ArtifactMismatchError{Stage: "imputer", Expected: len(im.Medians), Got: len(vector)}
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		if math.IsNaN(v) {
			out[i] = im.Medians[i]
		} else {
			out[i] = v
		}
	}
	return out, nil
}

// Scaler standardizes each column with the training-time mean and standard
// deviation. Zero-variance columns divide by 1, matching the fitted scaler.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (s *Scaler) Transform(vector []float64) ([]float64, error) {
	if len(s.Means) != len(s.Stds) {
		return nil, &ArtifactMismatchError{Stage: "scaler", Expected: len(s.Means), Got: len(s.Stds)}
	}
	if len(vector) != len(s.Means) {
		return nil, &ArtifactMismatchError{Stage: "scaler", Expected: len(s.Means), Got: len(vector)}
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		std := s.Stds[i]
		if std == 0 {
			std = 1
		}
		out[i] = (v - s.Means[i]) / std
	}
	return out, nil
}

// Preprocess applies imputation then standardization, in that fixed order.
// The output contains no NaN values.
func Preprocess(imputer *Imputer, scaler *Scaler, vector []float64) ([]float64, error) {
	imputed, err := imputer.Transform(vector)
	if err != nil {
		return nil, err
	}
	return scaler.Transform(imputed)
}
