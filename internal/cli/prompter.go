package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"grosz/internal/model"
)

// ReviewDecision is the outcome of prompting for one flagged expense.
type ReviewDecision struct {
	Category string
	Skipped  bool
}

// Prompter walks the user through the review queue: expenses whose
// predicted category fell below the review threshold.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter over the given streams. Nil arguments
// default to stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// ReviewExpense shows one flagged expense and asks the user to accept
// the prediction, pick another category, or skip.
func (p *Prompter) ReviewExpense(ctx context.Context, expense model.Expense, categories []model.Category) (ReviewDecision, error) {
	select {
	case <-ctx.Done():
		return ReviewDecision{}, ctx.Err()
	default:
	}

	fmt.Fprintln(p.writer, RenderBox("Expense Review", p.formatExpense(expense)))
	fmt.Fprintf(p.writer, "  [A] Accept predicted category: %s\n", SuccessStyle.Render(expense.Category))
	fmt.Fprintln(p.writer, "  [P] Pick a category from the list")
	fmt.Fprintln(p.writer, "  [N] Enter a new category name")
	fmt.Fprintln(p.writer, "  [S] Skip this expense")
	fmt.Fprintln(p.writer)

	for {
		choice, err := p.ask(ctx, "Your choice [A/P/N/S]")
		if err != nil {
			return ReviewDecision{}, err
		}

		switch strings.ToLower(choice) {
		case "a", "":
			return ReviewDecision{Category: expense.Category}, nil
		case "p":
			return p.pickCategory(ctx, categories)
		case "n":
			name, err := p.ask(ctx, "New category name")
			if err != nil {
				return ReviewDecision{}, err
			}
			if name == "" {
				fmt.Fprintln(p.writer, FormatError("category name cannot be empty"))
				continue
			}
			return ReviewDecision{Category: name}, nil
		case "s":
			return ReviewDecision{Skipped: true}, nil
		default:
			fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("unknown choice %q", choice)))
		}
	}
}

func (p *Prompter) pickCategory(ctx context.Context, categories []model.Category) (ReviewDecision, error) {
	if len(categories) == 0 {
		fmt.Fprintln(p.writer, FormatError("no categories registered yet"))
		return ReviewDecision{Skipped: true}, nil
	}

	for i, cat := range categories {
		fmt.Fprintf(p.writer, "  %2d. %s\n", i+1, cat.Name)
	}

	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Category number [1-%d]", len(categories)))
		if err != nil {
			return ReviewDecision{}, err
		}

		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 1 || idx > len(categories) {
			fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("pick a number between 1 and %d", len(categories))))
			continue
		}
		return ReviewDecision{Category: categories[idx-1].Name}, nil
	}
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.writer, FormatPrompt(prompt))
	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	return line, nil
}

func (p *Prompter) formatExpense(expense model.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Description: %s\n", expense.Description)
	if expense.Vendor != "" {
		fmt.Fprintf(&b, "Vendor:      %s\n", expense.Vendor)
	}
	if expense.Amount != 0 {
		fmt.Fprintf(&b, "Amount:      %.2f\n", expense.Amount)
	}
	fmt.Fprintf(&b, "Date:        %s\n", expense.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Predicted:   %s", expense.Category)
	if expense.Confidence != nil {
		fmt.Fprintf(&b, " (%s)", FormatConfidence(*expense.Confidence))
	}
	return b.String()
}
