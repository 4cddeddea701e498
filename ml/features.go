package ml

import (
	"encoding/json"
	"math"
)

// FeatureColumns is the fixed column order the imputer, scaler and model were
// fitted against. It must never be reordered or inferred from input.
var FeatureColumns = []string{
	"koi_period",
	"koi_time0bk",
	"koi_impact",
	"koi_duration",
	"koi_depth",
	"koi_prad",
	"koi_teq",
	"koi_insol",
	"koi_model_snr",
	"koi_steff",
	"koi_slogg",
	"koi_srad",
	"ra",
	"dec",
	"koi_kepmag",
}

// CandidateRecord is one transit-survey candidate submitted for classification.
// Any feature may be absent; absence is nil, never zero.
type CandidateRecord struct {
	CandidateIdentifier string `json:"candidateIdentifier"`

	Period        *float64 `json:"koi_period"`
	Epoch         *float64 `json:"koi_time0bk"`
	Impact        *float64 `json:"koi_impact"`
	Duration      *float64 `json:"koi_duration"`
	Depth         *float64 `json:"koi_depth"`
	Radius        *float64 `json:"koi_prad"`
	EqTemp        *float64 `json:"koi_teq"`
	Insolation    *float64 `json:"koi_insol"`
	SNR           *float64 `json:"koi_model_snr"`
	StellarTemp   *float64 `json:"koi_steff"`
	StellarLogG   *float64 `json:"koi_slogg"`
	StellarRadius *float64 `json:"koi_srad"`
	RA            *float64 `json:"ra"`
	Dec           *float64 `json:"dec"`
	Magnitude     *float64 `json:"koi_kepmag"`
}

// UnmarshalJSON accepts customIdentifier as an alias for candidateIdentifier,
// which older clients of the model service still send.
func (r *CandidateRecord) UnmarshalJSON(data []byte) error {
	type plain CandidateRecord
	var aux struct {
		plain
		CustomIdentifier string `json:"customIdentifier"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CandidateRecord(aux.plain)
	if r.CandidateIdentifier == "" {
		r.CandidateIdentifier = aux.CustomIdentifier
	}
	return nil
}

// FeatureVector maps the record onto FeatureColumns order. Absent values
// become NaN so the imputer can tell them apart from real zeros.
func (r *CandidateRecord) FeatureVector() []float64 {
	fields := []*float64{
		r.Period, r.Epoch, r.Impact, r.Duration, r.Depth,
		r.Radius, r.EqTemp, r.Insolation, r.SNR, r.StellarTemp,
		r.StellarLogG, r.StellarRadius, r.RA, r.Dec, r.Magnitude,
	}
	vector := make([]float64, len(fields))
	for i, f := range fields {
		if f == nil {
			vector[i] = math.NaN()
		} else {
			vector[i] = *f
		}
	}
	return vector
}

// MissingFeatures returns the json names of absent features, in schema order.
func (r *CandidateRecord) MissingFeatures() []string {
	vector := r.FeatureVector()
	var missing []string
	for i, v := range vector {
		if math.IsNaN(v) {
			missing = append(missing, FeatureColumns[i])
		}
	}
	return missing
}
