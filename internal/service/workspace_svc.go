package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/repository"
)

// ==================== 错误定义 ====================

var (
	ErrWorkspaceNotFound = errors.New("工作区不存在")
	ErrSlugTaken         = errors.New("该标识已被占用")
	ErrInvalidSlug       = errors.New("标识只能包含小写字母、数字和连字符")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ==================== WorkspaceService 工作区服务 ====================

// WorkspaceService 工作区 CRUD
// 创建时写入创建者的 owner 成员记录，和工作区本身在同一事务里
type WorkspaceService struct {
	uow *repository.UnitOfWork
}

// NewWorkspaceService 创建工作区服务
func NewWorkspaceService(uow *repository.UnitOfWork) *WorkspaceService {
	return &WorkspaceService{uow: uow}
}

// ==================== 查询 ====================

// List 当前用户所在的工作区列表
func (s *WorkspaceService) List(ctx context.Context, userID int64, page, pageSize int) ([]*dto.WorkspaceInfo, int64, error) {
	workspaces, total, err := s.uow.Workspaces.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.WorkspaceInfo, 0, len(workspaces))
	for i := range workspaces {
		ws := &workspaces[i]

		count, err := s.uow.Workspaces.CountActiveMembers(ctx, ws.ID)
		if err != nil {
			return nil, 0, err
		}
		membership, err := s.uow.Members.FindByUser(ctx, ws.ID, userID)
		if err != nil {
			return nil, 0, err
		}

		info := &dto.WorkspaceInfo{
			ID:           ws.ID,
			Name:         ws.Name,
			Slug:         ws.Slug,
			MembersCount: count,
			CreatedAt:    ws.CreatedAt,
		}
		if membership != nil {
			info.CurrentRole = membership.Role
		}
		infos = append(infos, info)
	}

	return infos, total, nil
}

// Get 获取工作区详情（当前用户视角）
func (s *WorkspaceService) Get(ctx context.Context, workspaceID, userID int64) (*dto.WorkspaceInfo, error) {
	ws, err := s.uow.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}

	count, err := s.uow.Workspaces.CountActiveMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	membership, err := s.uow.Members.FindByUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	info := &dto.WorkspaceInfo{
		ID:           ws.ID,
		Name:         ws.Name,
		Slug:         ws.Slug,
		MembersCount: count,
		CreatedAt:    ws.CreatedAt,
	}
	if membership != nil {
		info.CurrentRole = membership.Role
	}
	return info, nil
}

// ==================== 创建 ====================

// Create 创建工作区，创建者自动成为激活的 owner
func (s *WorkspaceService) Create(ctx context.Context, userID int64, req *dto.CreateWorkspaceRequest, rm RequestMeta) (*model.Workspace, error) {
	slug, err := s.resolveSlug(ctx, req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	workspace := &model.Workspace{
		Name:            req.Name,
		Slug:            slug,
		CreatedByUserID: userID,
	}

	now := time.Now()
	err = s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Workspaces.Create(ctx, workspace); err != nil {
			return err
		}

		owner := &model.WorkspaceMembership{
			WorkspaceID: workspace.ID,
			UserID:      &userID,
			Role:        model.RoleOwner,
			Status:      model.MemberStatusActive,
			JoinedAt:    &now,
		}
		if err := uow.Members.Create(ctx, owner); err != nil {
			return err
		}

		entry := newAuditLog(model.AuditWorkspaceCreated, &userID, &workspace.ID,
			"workspace", itoa(workspace.ID),
			map[string]interface{}{"name": workspace.Name, "slug": workspace.Slug}, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

// ==================== 更新 ====================

// Update 更新工作区，owner 和 admin 可操作
func (s *WorkspaceService) Update(ctx context.Context, workspaceID, userID int64, req *dto.UpdateWorkspaceRequest, rm RequestMeta) (*model.Workspace, error) {
	var workspace *model.Workspace

	err := s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		membership, err := uow.Members.FindByUser(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		if membership == nil || !membership.IsActive() || !policy.CanUpdateWorkspace(membership.Role) {
			return policy.ErrForbidden
		}

		workspace, err = uow.Workspaces.GetByID(ctx, workspaceID)
		if err != nil {
			return err
		}
		if workspace == nil {
			return ErrWorkspaceNotFound
		}

		changes := map[string]interface{}{}
		if req.Name != "" && req.Name != workspace.Name {
			changes["name"] = req.Name
			workspace.Name = req.Name
		}
		if req.Slug != "" && req.Slug != workspace.Slug {
			slug := strings.ToLower(req.Slug)
			if !slugPattern.MatchString(slug) {
				return ErrInvalidSlug
			}
			taken, err := uow.Workspaces.ExistsBySlug(ctx, slug)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
			changes["slug"] = slug
			workspace.Slug = slug
		}
		if len(changes) == 0 {
			return nil
		}

		if err := uow.Workspaces.Update(ctx, workspace); err != nil {
			return err
		}

		entry := newAuditLog(model.AuditWorkspaceUpdated, &userID, &workspaceID,
			"workspace", itoa(workspaceID), changes, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

// ==================== 删除 ====================

// Delete 删除工作区，仅 owner 可操作
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, userID int64, rm RequestMeta) error {
	return s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		membership, err := uow.Members.FindByUser(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		if membership == nil || !membership.IsActive() || !policy.CanDeleteWorkspace(membership.Role) {
			return policy.ErrForbidden
		}

		workspace, err := uow.Workspaces.GetByID(ctx, workspaceID)
		if err != nil {
			return err
		}
		if workspace == nil {
			return ErrWorkspaceNotFound
		}

		if err := uow.Workspaces.Delete(ctx, workspaceID); err != nil {
			return err
		}

		entry := newAuditLog(model.AuditWorkspaceDeleted, &userID, &workspaceID,
			"workspace", itoa(workspaceID),
			map[string]interface{}{"name": workspace.Name, "slug": workspace.Slug}, rm)
		return uow.Audit.Create(ctx, entry)
	})
}

// ==================== 内部辅助 ====================

// resolveSlug 确定工作区标识
// 显式传入时校验格式和唯一性；否则由名称派生，冲突时追加随机后缀
func (s *WorkspaceService) resolveSlug(ctx context.Context, explicit, name string) (string, error) {
	if explicit != "" {
		slug := strings.ToLower(explicit)
		if !slugPattern.MatchString(slug) {
			return "", ErrInvalidSlug
		}
		taken, err := s.uow.Workspaces.ExistsBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return slug, nil
	}

	slug := slugify(name)
	if slug == "" {
		slug = "workspace"
	}

	taken, err := s.uow.Workspaces.ExistsBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]), nil
}

// slugify 名称转小写连字符标识，非字母数字折叠为单个连字符
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
