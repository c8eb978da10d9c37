package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"flightdelay/db"
	"flightdelay/ml"
	"flightdelay/pipeline"
)

func main() {
	dataPath := flag.String("data", "./data/data.csv", "training dataset path")
	target := flag.String("target", "delay", "target column name")
	testRatio := flag.Float64("test_ratio", 0.33, "held-out ratio for evaluation")
	dbPath := flag.String("db", "", "sqlite path for the training log (optional)")
	flag.Parse()

	frame, err := pipeline.LoadDataset(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	labels, err := ml.EnsureLabel(frame, *target)
	if err != nil {
		log.Fatalf("failed to derive labels: %v", err)
	}
	features, err := ml.EncodeFeatures(frame)
	if err != nil {
		log.Fatalf("failed to encode features: %v", err)
	}

	trainX, trainY, testX, testY := splitDataset(features, labels, *testRatio)

	clf := ml.NewDelayClassifier()
	if err := clf.Fit(trainX, trainY); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := evaluateModel(clf, testX, testY)
	log.Printf("rows=%d accuracy=%.3f precision=%.3f recall=%.3f",
		frame.Len(), accuracy, precision, recall)

	if *dbPath != "" {
		if err := db.InitDB(*dbPath); err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		defer db.Close()

		delayed := 0
		for _, label := range labels {
			if label == 1 {
				delayed++
			}
		}
		entry := db.TrainingLog{
			ModelName:  "logistic",
			Rows:       frame.Len(),
			DelayRatio: float64(delayed) / float64(len(labels)),
			Accuracy:   accuracy,
			Precision:  precision,
			Recall:     recall,
			TrainedAt:  time.Now().UTC(),
		}
		if err := db.SaveTrainingLog(entry); err != nil {
			log.Fatalf("failed to record training run: %v", err)
		}
	}

	fmt.Println("training complete")
}

// splitDataset shuffles with the fixed seed so every run evaluates on the
// same held-out rows.
func splitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.33
	}
	rnd := rand.New(rand.NewSource(ml.RandomSeed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluateModel(clf *ml.DelayClassifier, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	predicted := clf.Predict(testX)

	var correct, truePositive, predictedPositive, actualPositive int
	for i, label := range predicted {
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
