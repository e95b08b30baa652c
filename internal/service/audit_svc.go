package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
)

// ==================== 审计记录构造 ====================

// RequestMeta 请求侧的审计信息，由控制器从 gin context 提取后显式传入
type RequestMeta struct {
	IP        string
	UserAgent string
}

// newAuditLog 构造一条审计记录
// meta 序列化失败时置空继续，审计不应该让主流程失败
func newAuditLog(action string, actorID, workspaceID *int64, targetType, targetID string, meta map[string]interface{}, rm RequestMeta) *model.AuditLog {
	entry := &model.AuditLog{
		WorkspaceID: workspaceID,
		ActorUserID: actorID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		IP:          rm.IP,
		UserAgent:   rm.UserAgent,
	}

	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			log.Printf("[Audit] meta 序列化失败: %v", err)
		} else {
			entry.Meta = datatypes.JSON(raw)
		}
	}

	return entry
}

// itoa 审计记录 target_id 统一存字符串
func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ==================== AuditService 审计服务 ====================

// AuditService 审计日志服务
// 写入口有两个：
//   - 事务内：成员/工作区/商品服务通过各自事务里的 AuditLogRepository 落库，
//     和主变更一起提交或一起回滚
//   - 事务外：登录注册这类没有主业务事务的动作走 Record
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record 追加一条审计记录
// 写失败只记日志不向上传播，审计缺失不阻断登录等主流程
func (s *AuditService) Record(ctx context.Context, action string, actorID, workspaceID *int64, targetType, targetID string, meta map[string]interface{}, rm RequestMeta) {
	entry := newAuditLog(action, actorID, workspaceID, targetType, targetID, meta, rm)
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("[Audit] 写入失败 action=%s: %v", action, err)
	}
}

// List 分页查询工作区审计日志
func (s *AuditService) List(ctx context.Context, workspaceID int64, query *dto.AuditLogQuery) ([]model.AuditLog, int64, error) {
	filter := repository.AuditFilter{
		Action:      query.Action,
		ActorUserID: query.ActorUserID,
		TargetType:  query.TargetType,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}

	if query.DateFrom != "" {
		if t, err := time.ParseInLocation("2006-01-02", query.DateFrom, time.Local); err == nil {
			filter.DateFrom = &t
		}
	}
	if query.DateTo != "" {
		if t, err := time.ParseInLocation("2006-01-02", query.DateTo, time.Local); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.DateTo = &end
		}
	}

	return s.auditRepo.ListByWorkspace(ctx, workspaceID, filter)
}
