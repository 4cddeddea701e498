package ml

import (
	"go.uber.org/zap"
)

// Service is the self-hosted serving path: feature vector → impute → scale →
// classify → bucket. Stateless between calls; artifacts are shared read-only.
type Service struct {
	artifacts *ArtifactProvider
	log       *zap.Logger
}

func NewService(artifacts *ArtifactProvider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{artifacts: artifacts, log: log}
}

// Classify runs one candidate through the fitted pipeline. Deterministic for
// a fixed artifact bundle. Persistence is the caller's concern.
func (s *Service) Classify(record CandidateRecord) (ClassificationResult, error) {
	bundle, err := s.artifacts.Bundle()
	if err != nil {
		return ClassificationResult{}, err
	}

	vector := record.FeatureVector()
	scaled, err := Preprocess(bundle.Imputer, bundle.Scaler, vector)
	if err != nil {
		return ClassificationResult{}, err
	}

	proba, err := bundle.Model.PredictProba(scaled)
	if err != nil {
		return ClassificationResult{}, err
	}

	isExoplanet := proba >= Threshold
	confidence := proba
	if !isExoplanet {
		confidence = 1 - proba
	}

	// Planet type comes from the raw radius; the standardized value has no
	// physical unit left to bucket.
	var planetType *string
	if record.Radius != nil {
		if label, ok := ClassifyPlanetType(*record.Radius); ok {
			planetType = &label
		}
	}

	result := ClassificationResult{
		CandidateIdentifier: record.CandidateIdentifier,
		IsExoplanet:         isExoplanet,
		Confidence:          RoundConfidence(confidence),
		Details: ResultDetails{
			PlanetName:            nil,
			PlanetType:            planetType,
			RadiusEarth:           record.Radius,
			OrbitalPeriodDays:     record.Period,
			EquilibriumTempKelvin: record.EqTemp,
		},
	}

	s.log.Debug("classified candidate",
		zap.String("id", record.CandidateIdentifier),
		zap.Bool("is_exoplanet", isExoplanet),
		zap.Float64("confidence", result.Confidence),
		zap.Int("missing_features", len(record.MissingFeatures())))
	return result, nil
}
