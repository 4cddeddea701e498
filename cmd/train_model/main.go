// Command train_model fits the serving artifacts from a NASA Exoplanet Archive
// KOI cumulative table export. It writes the four JSON artifacts the server
// loads at startup: imputer, scaler, model and feature column list.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"exoserve/ml"
)

func main() {
	csvPath := flag.String("csv", "", "KOI cumulative table CSV")
	outDir := flag.String("out", "./artifacts", "artifact output directory")
	epochs := flag.Int("epochs", 500, "gradient descent epochs")
	learningRate := flag.Float64("lr", 0.1, "learning rate")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout ratio")
	seed := flag.Int64("seed", 42, "shuffle seed")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("csv is required")
	}

	features, labels, err := loadTrainingData(*csvPath)
	if err != nil {
		log.Fatalf("failed to load training data: %v", err)
	}
	log.Printf("loaded %d candidates (%d features each)", len(features), len(ml.FeatureColumns))

	shuffle(features, labels, *seed)
	trainX, trainY, testX, testY := splitDataset(features, labels, *testRatio)

	imputer := fitImputer(trainX)
	for i := range trainX {
		trainX[i], _ = imputer.Transform(trainX[i])
	}
	scaler := fitScaler(trainX)
	for i := range trainX {
		trainX[i], _ = scaler.Transform(trainX[i])
	}

	model := fitLogistic(trainX, trainY, *epochs, *learningRate)

	accuracy, precision, recall := evaluateModel(model, imputer, scaler, testX, testY)
	log.Printf("holdout accuracy=%.3f precision=%.3f recall=%.3f", accuracy, precision, recall)

	if err := writeArtifacts(*outDir, imputer, scaler, model); err != nil {
		log.Fatalf("failed to write artifacts: %v", err)
	}
	fmt.Printf("artifacts written to %s\n", *outDir)
}

// loadTrainingData reads the KOI table. The label comes from koi_disposition:
// CONFIRMED rows are positive, FALSE POSITIVE rows negative, CANDIDATE rows
// are skipped because they are unlabeled. Blank feature cells become NaN.
func loadTrainingData(path string) ([][]float64, []int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columnIndex := map[string]int{}
	for i, name := range header {
		columnIndex[name] = i
	}
	dispositionIdx, ok := columnIndex["koi_disposition"]
	if !ok {
		return nil, nil, fmt.Errorf("koi_disposition column not found")
	}
	featureIdx := make([]int, len(ml.FeatureColumns))
	for i, name := range ml.FeatureColumns {
		idx, ok := columnIndex[name]
		if !ok {
			return nil, nil, fmt.Errorf("feature column %q not found", name)
		}
		featureIdx[i] = idx
	}

	var features [][]float64
	var labels []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		var label int
		switch row[dispositionIdx] {
		case "CONFIRMED":
			label = 1
		case "FALSE POSITIVE":
			label = 0
		default:
			continue
		}

		vector := make([]float64, len(featureIdx))
		for i, idx := range featureIdx {
			value, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				value = math.NaN()
			}
			vector[i] = value
		}
		features = append(features, vector)
		labels = append(labels, label)
	}

	if len(features) == 0 {
		return nil, nil, fmt.Errorf("no labeled rows in %s", path)
	}
	return features, labels, nil
}

func shuffle(features [][]float64, labels []int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(features), func(i, j int) {
		features[i], features[j] = features[j], features[i]
		labels[i], labels[j] = labels[j], labels[i]
	})
}

func splitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	split := int(float64(len(features)) * (1 - testRatio))
	for i := range features {
		if i < split {
			trainX = append(trainX, features[i])
			trainY = append(trainY, labels[i])
		} else {
			testX = append(testX, features[i])
			testY = append(testY, labels[i])
		}
	}
	return trainX, trainY, testX, testY
}

// fitImputer computes per-column medians over the observed (non-NaN) values.
func fitImputer(features [][]float64) *ml.Imputer {
	columns := len(ml.FeatureColumns)
	medians := make([]float64, columns)
	for c := 0; c < columns; c++ {
		observed := make([]float64, 0, len(features))
		for _, row := range features {
			if !math.IsNaN(row[c]) {
				observed = append(observed, row[c])
			}
		}
		medians[c] = median(observed)
	}
	return &ml.Imputer{Medians: medians}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

func fitScaler(features [][]float64) *ml.Scaler {
	columns := len(ml.FeatureColumns)
	means := make([]float64, columns)
	stds := make([]float64, columns)
	n := float64(len(features))

	for c := 0; c < columns; c++ {
		sum := 0.0
		for _, row := range features {
			sum += row[c]
		}
		means[c] = sum / n

		variance := 0.0
		for _, row := range features {
			d := row[c] - means[c]
			variance += d * d
		}
		stds[c] = math.Sqrt(variance / n)
	}
	return &ml.Scaler{Means: means, Stds: stds}
}

// fitLogistic runs full-batch gradient descent on log loss.
func fitLogistic(features [][]float64, labels []int, epochs int, learningRate float64) *ml.LogisticModel {
	columns := len(ml.FeatureColumns)
	weights := make([]float64, columns)
	intercept := 0.0
	n := float64(len(features))

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, columns)
		gradB := 0.0
		for i, row := range features {
			z := intercept
			for j, w := range weights {
				z += w * row[j]
			}
			residual := 1/(1+math.Exp(-z)) - float64(labels[i])
			for j := range gradW {
				gradW[j] += residual * row[j]
			}
			gradB += residual
		}
		for j := range weights {
			weights[j] -= learningRate * gradW[j] / n
		}
		intercept -= learningRate * gradB / n
	}
	return &ml.LogisticModel{Weights: weights, Intercept: intercept}
}

func evaluateModel(model *ml.LogisticModel, imputer *ml.Imputer, scaler *ml.Scaler, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, row := range testX {
		vector, err := ml.Preprocess(imputer, scaler, row)
		if err != nil {
			continue
		}
		p, err := model.PredictProba(vector)
		if err != nil {
			continue
		}
		label := 0
		if p >= ml.Threshold {
			label = 1
		}
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(testX))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}

func writeArtifacts(dir string, imputer *ml.Imputer, scaler *ml.Scaler, model *ml.LogisticModel) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "imputer.json"), imputer); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "scaler.json"), scaler); err != nil {
		return err
	}
	if err := model.Save(filepath.Join(dir, "model.json")); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "feature_columns.json"), ml.FeatureColumns)
}

func writeJSON(path string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
