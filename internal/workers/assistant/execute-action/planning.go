// internal/workers/assistant/execute-action/planning.go
package executeaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	commonerrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"
)

const defaultCardTitle = "Nova pauta"

// executeCreatePlanningCard inserts a card into the tenant's default
// planning column, the first one by position. A workspace without any
// column is an explicit failure, not a silent default.
func (h *Handler) executeCreatePlanningCard(ctx context.Context, input *Input, progress *progressTracker) (*models.ExecutionResult, error) {
	columnID, err := h.defaultPlanningColumn(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	progress.Report(ctx, 40)

	params := input.Action.Action.Params
	title := params["title"]
	if title == "" {
		title = defaultCardTitle
	}

	cardID := uuid.New().String()
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO planning_cards
		 (id, tenant_id, workspace_id, column_id, title, description, due_date, assignee, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		cardID,
		input.TenantID,
		input.WorkspaceID,
		columnID,
		title,
		nullable(params["description"]),
		nullable(params["date"]),
		nullable(params["assignee"]),
	)
	if err != nil {
		return nil, commonerrors.NewDatabaseInsertFailedError("planning_cards", err)
	}
	progress.Report(ctx, 100)

	return &models.ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("planning card %q created", title),
		Data: map[string]interface{}{
			"cardId":   cardID,
			"columnId": columnID,
			"title":    title,
		},
	}, nil
}

func (h *Handler) defaultPlanningColumn(ctx context.Context, tenantID string) (string, error) {
	var columnID string
	err := h.db.QueryRowContext(ctx,
		"SELECT id FROM planning_columns WHERE tenant_id = $1 ORDER BY position ASC LIMIT 1",
		tenantID,
	).Scan(&columnID)
	if err == sql.ErrNoRows {
		return "", commonerrors.NewNoPlanningColumnError(tenantID)
	}
	if err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError("planning_columns", err)
	}
	return columnID, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
