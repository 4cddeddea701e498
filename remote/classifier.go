package remote

import (
	"context"

	"go.uber.org/zap"

	"exoserve/ml"
	"exoserve/monitoring"
)

// Classifier is the delegated serving path: try the authoritative endpoint,
// and on any classified failure either degrade into the fallback heuristic
// (when the deployment opted in) or surface the tagged error.
type Classifier struct {
	client      *Client
	fallback    *Fallback
	useFallback bool
	log         *zap.Logger
}

func NewClassifier(client *Client, useFallback bool, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		client:      client,
		fallback:    NewFallback(),
		useFallback: useFallback,
		log:         log,
	}
}

func (c *Classifier) Classify(ctx context.Context, record ml.CandidateRecord) (ml.ClassificationResult, error) {
	result, err := c.client.Classify(ctx, record)
	if err == nil {
		monitoring.Classifications.WithLabelValues("delegated", "ok").Inc()
		return result, nil
	}

	callErr, ok := err.(*CallError)
	if !ok {
		callErr = &CallError{Kind: KindUnknown, Message: err.Error(), Err: err}
	}
	monitoring.Classifications.WithLabelValues("delegated", string(callErr.Kind)).Inc()

	if !c.useFallback {
		return ml.ClassificationResult{}, callErr
	}

	c.log.Warn("authoritative classifier failed, serving fallback",
		zap.String("kind", string(callErr.Kind)),
		zap.String("id", record.CandidateIdentifier))
	monitoring.Fallbacks.Inc()
	return c.fallback.Classify(record), nil
}
