package service

import (
	"context"
	"errors"
	"strings"

	"listhub_v1_202602/internal/api/dto"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// 422 类：挂在 email 字段上
	ErrMemberExists  = errors.New("该邮箱已是工作区成员")
	ErrMemberInvited = errors.New("该邮箱已被邀请")

	// 404 类
	ErrMemberNotFound = errors.New("成员不存在")
)

// ==================== MemberService 成员服务 ====================

// MemberService 工作区成员服务
// 每个写操作都是一个事务：重新读操作者角色 -> 策略判定 -> 写入 -> 审计，
// 全部成功才提交。操作者角色不用中间件里带过来的快照，
// 避免角色在请求间被改掉后旧权限还生效
type MemberService struct {
	uow *repository.UnitOfWork
}

// NewMemberService 创建成员服务
func NewMemberService(uow *repository.UnitOfWork) *MemberService {
	return &MemberService{uow: uow}
}

// ==================== 查询 ====================

// List 分页获取成员列表
func (s *MemberService) List(ctx context.Context, workspaceID int64, page, pageSize int) ([]*dto.MemberInfo, int64, error) {
	members, total, err := s.uow.Members.List(ctx, workspaceID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.MemberInfo, 0, len(members))
	for i := range members {
		infos = append(infos, dto.FromMembership(&members[i]))
	}
	return infos, total, nil
}

// ==================== 邀请 ====================

// Invite 邀请成员加入工作区
// 冲突策略：
//   - 邮箱对应已注册用户且已是激活成员 -> ErrMemberExists
//   - 邮箱没有账号但已有待邀请记录 -> ErrMemberInvited
//   - 其余情况创建/更新一条 status=invited 的成员记录
func (s *MemberService) Invite(ctx context.Context, workspaceID, actorUserID int64, req *dto.InviteMemberRequest, rm RequestMeta) (*model.WorkspaceMembership, error) {
	requestedRole := model.WorkspaceRole(req.Role)
	if !model.ValidRole(requestedRole) {
		return nil, policy.ErrInvalidRoleChange
	}
	email := strings.ToLower(req.Email)

	var membershipID int64
	err := s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		actor, err := s.requireActiveActor(ctx, uow, workspaceID, actorUserID)
		if err != nil {
			return err
		}

		if err := policy.DecideInvite(actor.Role, requestedRole); err != nil {
			return err
		}

		user, err := uow.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		membership := &model.WorkspaceMembership{
			WorkspaceID:     workspaceID,
			Role:            requestedRole,
			Status:          model.MemberStatusInvited,
			InvitedByUserID: &actorUserID,
		}

		if user != nil {
			existing, err := uow.Members.FindByUser(ctx, workspaceID, user.ID)
			if err != nil {
				return err
			}
			if existing != nil && existing.IsActive() {
				return ErrMemberExists
			}

			// 已注册用户：按 (workspace_id, user_id) 冲突更新
			userID := user.ID
			membership.UserID = &userID
			if err := uow.Members.Upsert(ctx, membership); err != nil {
				return err
			}
			// 冲突更新时拿不到原记录 ID，重新读一次
			fresh, err := uow.Members.FindByUser(ctx, workspaceID, user.ID)
			if err != nil {
				return err
			}
			membership.ID = fresh.ID
		} else {
			pending, err := uow.Members.FindPendingByEmail(ctx, workspaceID, email)
			if err != nil {
				return err
			}
			if pending != nil {
				return ErrMemberInvited
			}

			membership.InvitedEmail = email
			if err := uow.Members.Create(ctx, membership); err != nil {
				return err
			}
		}
		membershipID = membership.ID

		entry := newAuditLog(model.AuditMemberInvited, &actorUserID, &workspaceID,
			"workspace_member", itoa(membership.ID),
			map[string]interface{}{
				"invited_email": email,
				"role":          string(requestedRole),
			}, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.uow.Members.FindByID(ctx, workspaceID, membershipID)
}

// ==================== 角色变更 ====================

// UpdateRole 变更成员角色
func (s *MemberService) UpdateRole(ctx context.Context, workspaceID, actorUserID, memberID int64, req *dto.UpdateMemberRequest, rm RequestMeta) (*model.WorkspaceMembership, error) {
	newRole := model.WorkspaceRole(req.Role)
	if !model.ValidRole(newRole) {
		return nil, policy.ErrInvalidRoleChange
	}

	err := s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		// 串行化同一工作区的成员变更，防止两个并发降级
		// 各自读到 owner 数 = 2 后双双放行
		if err := uow.Members.LockWorkspace(ctx, workspaceID); err != nil {
			return err
		}

		actor, err := s.requireActiveActor(ctx, uow, workspaceID, actorUserID)
		if err != nil {
			return err
		}

		target, err := uow.Members.FindByID(ctx, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrMemberNotFound
		}

		owners, err := uow.Members.CountActiveOwners(ctx, workspaceID)
		if err != nil {
			return err
		}

		isSelf := target.UserID != nil && *target.UserID == actorUserID
		if err := policy.DecideRoleChange(actor.Role, isSelf, target.Role, newRole, owners); err != nil {
			return err
		}

		// 写语句内再次校验 owner 计数，防护事务外的竞态
		ok, err := uow.Members.UpdateRoleGuarded(ctx, workspaceID, memberID, newRole)
		if err != nil {
			return err
		}
		if !ok {
			// 没写进去：要么目标被并发移除，要么降级会清空 owner
			fresh, err := uow.Members.FindByID(ctx, workspaceID, memberID)
			if err != nil {
				return err
			}
			if fresh == nil {
				return ErrMemberNotFound
			}
			return policy.ErrLastOwner
		}

		entry := newAuditLog(model.AuditMemberRoleChanged, &actorUserID, &workspaceID,
			"workspace_member", itoa(memberID),
			map[string]interface{}{
				"from": string(target.Role),
				"to":   string(newRole),
			}, rm)
		return uow.Audit.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.uow.Members.FindByID(ctx, workspaceID, memberID)
}

// ==================== 移除 ====================

// Remove 移除成员（物理删除）
func (s *MemberService) Remove(ctx context.Context, workspaceID, actorUserID, memberID int64, rm RequestMeta) error {
	return s.uow.Transaction(ctx, func(uow *repository.UnitOfWork) error {
		if err := uow.Members.LockWorkspace(ctx, workspaceID); err != nil {
			return err
		}

		actor, err := s.requireActiveActor(ctx, uow, workspaceID, actorUserID)
		if err != nil {
			return err
		}

		target, err := uow.Members.FindByID(ctx, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrMemberNotFound
		}

		owners, err := uow.Members.CountActiveOwners(ctx, workspaceID)
		if err != nil {
			return err
		}

		if err := policy.DecideRemoval(actor.Role, target.Role, owners); err != nil {
			return err
		}

		ok, err := uow.Members.DeleteGuarded(ctx, workspaceID, memberID)
		if err != nil {
			return err
		}
		if !ok {
			fresh, err := uow.Members.FindByID(ctx, workspaceID, memberID)
			if err != nil {
				return err
			}
			if fresh == nil {
				return ErrMemberNotFound
			}
			return policy.ErrLastOwner
		}

		meta := map[string]interface{}{
			"removed_role": string(target.Role),
		}
		if target.UserID != nil {
			meta["removed_user_id"] = *target.UserID
		}
		if target.InvitedEmail != "" {
			meta["removed_invited_email"] = target.InvitedEmail
		}

		entry := newAuditLog(model.AuditMemberRemoved, &actorUserID, &workspaceID,
			"workspace_member", itoa(memberID), meta, rm)
		return uow.Audit.Create(ctx, entry)
	})
}

// ==================== 内部辅助 ====================

// requireActiveActor 在事务内重新读取操作者的成员记录
func (s *MemberService) requireActiveActor(ctx context.Context, uow *repository.UnitOfWork, workspaceID, actorUserID int64) (*model.WorkspaceMembership, error) {
	actor, err := uow.Members.FindByUser(ctx, workspaceID, actorUserID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.IsActive() {
		return nil, policy.ErrForbidden
	}
	return actor, nil
}
