package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/domain"
	"github.com/dvloznov/budget-report/internal/ledger"
	"github.com/dvloznov/budget-report/internal/logger"
	"github.com/dvloznov/budget-report/internal/report"
)

// PipelineStep represents a single step in the report pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Source       ledger.Source
	Ledger       *ledger.Ledger
	Transactions []domain.Transaction // annotated
	Bundle       *report.Bundle
}

// Step 1: LoadLedgerStep reads and schema-checks the ledger.
type LoadLedgerStep struct{}

func (s *LoadLedgerStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Source == nil {
		return fmt.Errorf("LoadLedgerStep: no source")
	}
	l, err := state.Source.Load(ctx)
	if err != nil {
		return err
	}
	state.Ledger = l

	log := logger.FromContext(ctx)
	log.Debug().Str("source", state.Source.String()).Int("records", len(l.Records)).Msg("ledger loaded")
	return nil
}

// Step 2: CategorizeStep labels every record.
type CategorizeStep struct {
	Categorizer *categorize.Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Ledger == nil {
		return fmt.Errorf("CategorizeStep: ledger not loaded")
	}
	state.Transactions = s.Categorizer.Annotate(state.Ledger.Records)
	return nil
}

// Step 3: AssembleStep partitions and summarizes the annotated records.
type AssembleStep struct{}

func (s *AssembleStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Bundle = report.Assemble(state.Transactions)

	log := logger.FromContext(ctx)
	log.Debug().
		Int("expenses", len(state.Bundle.Expenses)).
		Int("payments", len(state.Bundle.Payments)).
		Str("total_expenses", state.Bundle.TotalExpenses.StringFixed(2)).
		Msg("report assembled")
	return nil
}

// Step 4: VerifyStep checks labels and cross-view consistency of the bundle.
type VerifyStep struct {
	Validator *CategoryValidator
}

func (s *VerifyStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Bundle == nil {
		return fmt.Errorf("VerifyStep: no report assembled")
	}
	for _, t := range state.Bundle.Transactions {
		if err := s.Validator.ValidateCategory(t.Category); err != nil {
			return fmt.Errorf("VerifyStep: %q: %w", t.Description, err)
		}
	}
	if err := state.Bundle.Check(); err != nil {
		return fmt.Errorf("VerifyStep: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewReportPipeline creates the standard four-step report pipeline.
func NewReportPipeline(c *categorize.Categorizer) *Pipeline {
	return NewPipeline(
		&LoadLedgerStep{},
		&CategorizeStep{Categorizer: c},
		&AssembleStep{},
		&VerifyStep{Validator: NewCategoryValidator(c)},
	)
}

// BuildReport runs the report pipeline over src.
func BuildReport(ctx context.Context, c *categorize.Categorizer, src ledger.Source) (*report.Bundle, error) {
	state := &PipelineState{Source: src}
	if err := NewReportPipeline(c).Execute(ctx, state); err != nil {
		return nil, fmt.Errorf("BuildReport: %s: %w", src, err)
	}
	return state.Bundle, nil
}
