// Package store is the local delivery strategy: it writes imported problems
// straight into the judge's database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jjudge-oj/fps-import/types"
)

// ProblemRepository persists imported problems and their tag associations.
type ProblemRepository struct {
	db *sql.DB
}

func NewProblemRepository(db *sql.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// Deliver creates the problem record and its tag links in a single
// transaction. If any step fails, every database mutation for the item is
// rolled back; test-case files already on disk are left for the next run to
// overwrite.
func (r *ProblemRepository) Deliver(
	ctx context.Context,
	problem types.Problem,
	manifest types.TestCaseManifest,
	dir string,
) (types.DeliveryResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.DeliveryResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertProblem(ctx, tx, problem)
	if err != nil {
		return types.DeliveryResult{}, err
	}

	for _, tag := range problem.Tags {
		if err := linkTag(ctx, tx, id, tag); err != nil {
			return types.DeliveryResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.DeliveryResult{}, fmt.Errorf("commit problem %q: %w", problem.DisplayID, err)
	}

	return types.DeliveryResult{RemoteID: strconv.Itoa(id)}, nil
}

func insertProblem(ctx context.Context, tx *sql.Tx, problem types.Problem) (int, error) {
	samplesJSON, err := json.Marshal(problem.Samples)
	if err != nil {
		return 0, err
	}
	templatesJSON, err := json.Marshal(problem.Templates)
	if err != nil {
		return 0, err
	}
	languagesJSON, err := json.Marshal(problem.Languages)
	if err != nil {
		return 0, err
	}
	scoreJSON, err := json.Marshal(problem.TestCaseScore)
	if err != nil {
		return 0, err
	}

	now := time.Now()

	const query = `
		INSERT INTO problems (
			display_id, title, description, input_description, output_description,
			hint, source, time_limit, memory_limit, difficulty, rule_type,
			visible, languages, samples, templates,
			spj, spj_code, spj_language, solution, solution_language,
			test_case_id, test_case_score, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id`

	var id int
	if err := tx.QueryRowContext(
		ctx,
		query,
		problem.DisplayID,
		problem.Title,
		problem.Description,
		problem.InputDescription,
		problem.OutputDescription,
		problem.Hint,
		problem.Source,
		problem.TimeLimit,
		problem.MemoryLimit,
		string(problem.Difficulty),
		string(problem.RuleType),
		problem.Visible,
		languagesJSON,
		samplesJSON,
		templatesJSON,
		problem.SPJ,
		problem.SPJCode,
		problem.SPJLanguage,
		problem.Solution,
		problem.SolutionLanguage,
		problem.TestCaseSetID,
		scoreJSON,
		now,
		now,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert problem %q: %w", problem.DisplayID, err)
	}

	return id, nil
}

// linkTag associates a tag with a problem, creating the tag on first use.
func linkTag(ctx context.Context, tx *sql.Tx, problemID int, tag string) error {
	var tagID int
	err := tx.QueryRowContext(ctx, `SELECT id FROM problem_tags WHERE name = $1`, tag).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `INSERT INTO problem_tags (name) VALUES ($1) RETURNING id`, tag).Scan(&tagID)
	}
	if err != nil {
		return fmt.Errorf("resolve tag %q: %w", tag, err)
	}

	const query = `
		INSERT INTO problem_tag_links (problem_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, problemID, tagID); err != nil {
		return fmt.Errorf("link tag %q: %w", tag, err)
	}
	return nil
}

// FindByTitle returns the stored problem with the given title. Duplicate
// titles resolve to the lowest id, matching how the judge's own tooling
// picks a winner.
func (r *ProblemRepository) FindByTitle(ctx context.Context, title string) (types.StoredProblem, error) {
	const query = `
		SELECT id, display_id, test_case_id, difficulty
		FROM problems
		WHERE title = $1
		ORDER BY id
		LIMIT 1`

	var stored types.StoredProblem
	var difficulty string
	err := r.db.QueryRowContext(ctx, query, title).Scan(
		&stored.ID,
		&stored.DisplayID,
		&stored.TestCaseSetID,
		&difficulty,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StoredProblem{}, ErrNotFound
		}
		return types.StoredProblem{}, err
	}
	stored.Difficulty = types.Difficulty(difficulty)
	return stored, nil
}

// UpdateTestCaseScore replaces a problem's test-case plan.
func (r *ProblemRepository) UpdateTestCaseScore(ctx context.Context, id int, plan []types.TestCaseScore) error {
	scoreJSON, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.execOnProblem(ctx, id,
		`UPDATE problems SET test_case_score = $1, updated_at = $2 WHERE id = $3`,
		scoreJSON, time.Now(), id,
	)
}

// AddTags links the given tags to a problem, creating missing tags. Links
// that already exist are left alone.
func (r *ProblemRepository) AddTags(ctx context.Context, id int, tags []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tag := range tags {
		if err := linkTag(ctx, tx, id, tag); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetDifficulty updates a problem's difficulty bucket.
func (r *ProblemRepository) SetDifficulty(ctx context.Context, id int, difficulty types.Difficulty) error {
	return r.execOnProblem(ctx, id,
		`UPDATE problems SET difficulty = $1, updated_at = $2 WHERE id = $3`,
		string(difficulty), time.Now(), id,
	)
}

// SetVisible toggles a problem's visibility.
func (r *ProblemRepository) SetVisible(ctx context.Context, id int, visible bool) error {
	return r.execOnProblem(ctx, id,
		`UPDATE problems SET visible = $1, updated_at = $2 WHERE id = $3`,
		visible, time.Now(), id,
	)
}

func (r *ProblemRepository) execOnProblem(ctx context.Context, id int, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
