package pattern

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/jbrukh/bayesian"
)

// ErrTooFewClasses is returned when training data spans fewer than two categories.
var ErrTooFewClasses = errors.New("description model needs at least two categories")

// Description model emission constants.
const (
	descriptionMinProbability = 0.6
	descriptionWeight         = 0.5
)

// DescriptionModel is a naive-Bayes classifier over description tokens.
type DescriptionModel struct {
	classifier *bayesian.Classifier
	vocabulary map[string]struct{}
	classes    []model.Category
}

// TrainDescriptionModel fits a classifier to the labeled descriptions.
func TrainDescriptionModel(samples []model.LabeledObservation) (*DescriptionModel, error) {
	seen := make(map[model.Category]bool)
	var classes []model.Category
	for _, s := range samples {
		if len(descriptionTerms(s.Observation)) == 0 || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		classes = append(classes, s.Category)
	}
	if len(classes) < 2 {
		return nil, ErrTooFewClasses
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	bc := make([]bayesian.Class, len(classes))
	for i, c := range classes {
		bc[i] = bayesian.Class(c)
	}

	dm := &DescriptionModel{
		classifier: bayesian.NewClassifier(bc...),
		vocabulary: make(map[string]struct{}),
		classes:    classes,
	}
	for _, s := range samples {
		terms := descriptionTerms(s.Observation)
		if len(terms) == 0 {
			continue
		}
		dm.classifier.Learn(terms, bayesian.Class(s.Category))
		for _, term := range terms {
			dm.vocabulary[term] = struct{}{}
		}
	}
	return dm, nil
}

// Predict returns the most probable category when its probability is at least
// 0.6, the winner is unique, and the description shares a term with training.
func (m *DescriptionModel) Predict(obs model.Observation) (model.CategoryPrediction, bool) {
	if m == nil || m.classifier == nil {
		return model.CategoryPrediction{}, false
	}

	terms := descriptionTerms(obs)
	known := 0
	for _, term := range terms {
		if _, ok := m.vocabulary[term]; ok {
			known++
		}
	}
	if known == 0 {
		return model.CategoryPrediction{}, false
	}

	scores, inx, strict := m.classifier.ProbScores(terms)
	if !strict || inx < 0 || inx >= len(m.classes) {
		return model.CategoryPrediction{}, false
	}
	probability := scores[inx]
	if probability < descriptionMinProbability {
		return model.CategoryPrediction{}, false
	}

	category := m.classes[inx]
	return model.CategoryPrediction{
		Category:   category,
		Confidence: model.ClampConfidence(descriptionWeight * probability),
		Reasoning:  []string{fmt.Sprintf("description model favors %s (p=%.2f)", category, probability)},
	}, true
}

// Classes returns the categories the model was trained on.
func (m *DescriptionModel) Classes() []model.Category {
	return append([]model.Category(nil), m.classes...)
}

type descriptionModelDoc struct {
	Classes    []model.Category `json:"classes"`
	Vocabulary []string         `json:"vocabulary"`
	Classifier []byte           `json:"classifier"`
}

// MarshalJSON encodes the classifier alongside its class order and vocabulary.
func (m *DescriptionModel) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.classifier.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode description model: %w", err)
	}

	vocab := make([]string, 0, len(m.vocabulary))
	for term := range m.vocabulary {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	return json.Marshal(descriptionModelDoc{
		Classes:    m.classes,
		Vocabulary: vocab,
		Classifier: buf.Bytes(),
	})
}

// UnmarshalJSON restores a model written by MarshalJSON.
func (m *DescriptionModel) UnmarshalJSON(data []byte) error {
	var doc descriptionModelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Classes) < 2 {
		return fmt.Errorf("%w: %w", common.ErrCorruptState, ErrTooFewClasses)
	}

	classifier, err := bayesian.NewClassifierFromReader(bytes.NewReader(doc.Classifier))
	if err != nil {
		return fmt.Errorf("%w: failed to decode description model: %w", common.ErrCorruptState, err)
	}

	m.classifier = classifier
	m.classes = doc.Classes
	m.vocabulary = make(map[string]struct{}, len(doc.Vocabulary))
	for _, term := range doc.Vocabulary {
		m.vocabulary[term] = struct{}{}
	}
	return nil
}

func descriptionTerms(obs model.Observation) []string {
	var terms []string
	for _, token := range common.Tokenize(obs.Description) {
		if len(token) < 3 || common.IsStopword(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}
