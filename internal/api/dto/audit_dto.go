package dto

// AuditLogQuery 审计日志查询条件
type AuditLogQuery struct {
	Action      string `form:"action"`
	ActorUserID int64  `form:"actor_user_id"`
	TargetType  string `form:"target_type"`
	DateFrom    string `form:"date_from"` // YYYY-MM-DD，当天零点起
	DateTo      string `form:"date_to"`   // YYYY-MM-DD，当天结束止
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}
