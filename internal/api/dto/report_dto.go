package dto

// ==================== 周报 ====================

// WeeklyStats 周订餐统计
// TotalOrdered + TotalNotOrdered == TotalEmployees
type WeeklyStats struct {
	Week            string `json:"week"`
	TotalEmployees  int64  `json:"total_employees"`
	TotalOrdered    int64  `json:"total_ordered"`
	TotalNotOrdered int64  `json:"total_not_ordered"`
	SelfOrdered     int64  `json:"self_ordered"`   // 员工自助下单
	BackupOrdered   int64  `json:"backup_ordered"` // 仅有系统补单
}

// EmployeeSummary 员工摘要
type EmployeeSummary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	LocationID   *int64 `json:"location_id,omitempty"`
}

// ==================== 补单 ====================

// BackfillIssue 未能补单的员工
type BackfillIssue struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

// BackfillResult 补单结果
type BackfillResult struct {
	Week       string          `json:"week"`
	Created    int             `json:"created"`
	Skipped    int             `json:"skipped"`
	Incomplete int             `json:"incomplete"` // 不足五天的补单
	Failures   []BackfillIssue `json:"failures"`
}
