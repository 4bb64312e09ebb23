package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/model"
)

const maxPromptAttempts = 3

// Prompter asks the user to confirm or correct a prediction.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter reads answers from r and writes prompts to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: NewLineReader(r), writer: w}
}

// ChooseCategory shows the prediction and a numbered category list. An empty
// answer accepts the prediction; otherwise the answer is a list number or a
// category name.
func (p *Prompter) ChooseCategory(ctx context.Context, obs model.Observation, pred model.CategoryPrediction) (model.Category, error) {
	categories := model.AllCategories()

	fmt.Fprint(p.writer, RenderPrediction(obs, pred))
	for i, cat := range categories {
		fmt.Fprintf(p.writer, "  %s %s\n", SubtleStyle.Render(fmt.Sprintf("%2d.", i+1)), cat)
	}

	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("Category [%s]", pred.Category)))

		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		if cat, ok := resolveAnswer(answer, pred.Category, categories); ok {
			return cat, nil
		}
		fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("%q is not a category", answer)))
	}
	return "", fmt.Errorf("%w: no valid answer after %d attempts", common.ErrInvalidCategory, maxPromptAttempts)
}

func resolveAnswer(answer string, suggested model.Category, categories []model.Category) (model.Category, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return suggested, true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(categories) {
			return categories[n-1], true
		}
		return "", false
	}
	cat, err := model.ParseCategory(answer)
	if err != nil {
		return "", false
	}
	return cat, true
}
