package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/models"
)

type AdminActionLogRepository struct {
	DB *pgxpool.Pool
}

func NewAdminActionLogRepository(db *pgxpool.Pool) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: db}
}

// CreateActionLog records a sensitive action (NCR deletion, batch
// documentation) for later audit.
func (r *AdminActionLogRepository) CreateActionLog(ctx context.Context, entry *models.AdminActionLog) error {
	query := `
		INSERT INTO admin_action_logs (
			admin_user_id, action_type, target_type, target_id,
			description, ip_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.DB.Exec(ctx, query,
		entry.AdminUserID, entry.ActionType, entry.TargetType, entry.TargetID,
		entry.Description, entry.IPAddress,
	)
	return wrapErr("create action log", err)
}

// ListActionLogs retrieves the audit trail with actor details, newest
// first.
func (r *AdminActionLogRepository) ListActionLogs(ctx context.Context) ([]map[string]interface{}, error) {
	query := `
		SELECT
			al.id,
			al.admin_user_id,
			u.name as admin_name,
			u.email as admin_email,
			u.role as admin_role,
			al.action_type,
			al.target_type,
			al.target_id,
			al.description,
			al.ip_address,
			al.created_at
		FROM admin_action_logs al
		JOIN users u ON al.admin_user_id = u.id
		ORDER BY al.created_at DESC
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list action logs", err)
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var entry models.AdminActionLog
		var adminName, adminEmail, adminRole string

		if err := rows.Scan(
			&entry.ID, &entry.AdminUserID, &adminName, &adminEmail, &adminRole,
			&entry.ActionType, &entry.TargetType, &entry.TargetID,
			&entry.Description, &entry.IPAddress, &entry.CreatedAt,
		); err != nil {
			return nil, wrapErr("scan action log", err)
		}

		row := map[string]interface{}{
			"id":            entry.ID,
			"admin_user_id": entry.AdminUserID,
			"admin_name":    adminName,
			"admin_email":   adminEmail,
			"admin_role":    adminRole,
			"action_type":   entry.ActionType,
			"target_type":   entry.TargetType,
			"description":   entry.Description,
			"created_at":    entry.CreatedAt,
		}
		if entry.TargetID != nil {
			row["target_id"] = *entry.TargetID
		}
		if entry.IPAddress != nil {
			row["ip_address"] = *entry.IPAddress
		}
		logs = append(logs, row)
	}

	return logs, wrapErr("list action logs", rows.Err())
}
