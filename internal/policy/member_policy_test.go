package policy

import (
	"errors"
	"math/rand"
	"testing"

	"listhub_v1_202602/internal/model"
)

var allRoles = []model.WorkspaceRole{
	model.RoleOwner, model.RoleAdmin, model.RoleManager,
	model.RoleContent, model.RoleViewer,
}

// ==================== 邀请 ====================

func TestDecideInvite(t *testing.T) {
	cases := []struct {
		actor     model.WorkspaceRole
		requested model.WorkspaceRole
		wantErr   error
	}{
		// owner 可以邀请任意角色
		{model.RoleOwner, model.RoleOwner, nil},
		{model.RoleOwner, model.RoleAdmin, nil},
		{model.RoleOwner, model.RoleViewer, nil},
		// admin 不能邀请 owner，其余都行
		{model.RoleAdmin, model.RoleOwner, ErrForbidden},
		{model.RoleAdmin, model.RoleAdmin, nil},
		{model.RoleAdmin, model.RoleManager, nil},
		{model.RoleAdmin, model.RoleContent, nil},
		{model.RoleAdmin, model.RoleViewer, nil},
		// manager 只能邀请 content / viewer
		{model.RoleManager, model.RoleOwner, ErrForbidden},
		{model.RoleManager, model.RoleAdmin, ErrForbidden},
		{model.RoleManager, model.RoleManager, ErrForbidden},
		{model.RoleManager, model.RoleContent, nil},
		{model.RoleManager, model.RoleViewer, nil},
	}

	for _, c := range cases {
		if got := DecideInvite(c.actor, c.requested); !errors.Is(got, c.wantErr) && got != c.wantErr {
			t.Errorf("DecideInvite(%s, %s) = %v, want %v", c.actor, c.requested, got, c.wantErr)
		}
	}
}

func TestDecideInvite_ContentViewerAlwaysForbidden(t *testing.T) {
	for _, actor := range []model.WorkspaceRole{model.RoleContent, model.RoleViewer} {
		for _, requested := range allRoles {
			if got := DecideInvite(actor, requested); !errors.Is(got, ErrForbidden) {
				t.Errorf("DecideInvite(%s, %s) = %v, want ErrForbidden", actor, requested, got)
			}
		}
	}
}

// ==================== 角色变更 ====================

func TestDecideRoleChange_ActorLegality(t *testing.T) {
	// content / viewer 无论目标是谁都拒绝
	for _, actor := range []model.WorkspaceRole{model.RoleManager, model.RoleContent, model.RoleViewer} {
		for _, target := range allRoles {
			for _, newRole := range allRoles {
				got := DecideRoleChange(actor, false, target, newRole, 5)
				if !errors.Is(got, ErrForbidden) {
					t.Errorf("DecideRoleChange(actor=%s, target=%s, new=%s) = %v, want ErrForbidden",
						actor, target, newRole, got)
				}
			}
		}
	}
}

func TestDecideRoleChange_AdminEscalation(t *testing.T) {
	// admin 不能授予 owner
	if got := DecideRoleChange(model.RoleAdmin, false, model.RoleViewer, model.RoleOwner, 5); !errors.Is(got, ErrForbidden) {
		t.Errorf("admin 授予 owner 应被拒绝, got %v", got)
	}
	// admin 不能动 owner 的记录，即使是降级
	if got := DecideRoleChange(model.RoleAdmin, false, model.RoleOwner, model.RoleAdmin, 5); !errors.Is(got, ErrForbidden) {
		t.Errorf("admin 降级 owner 应被拒绝, got %v", got)
	}
	// admin 改非 owner 成员是允许的
	if got := DecideRoleChange(model.RoleAdmin, false, model.RoleViewer, model.RoleManager, 5); got != nil {
		t.Errorf("admin 调整普通成员角色应放行, got %v", got)
	}
}

func TestDecideRoleChange_SelfDemotionToViewer(t *testing.T) {
	// 本人降级为 viewer 一律是领域校验错误，owner 也不例外
	for _, actor := range []model.WorkspaceRole{model.RoleOwner, model.RoleAdmin} {
		got := DecideRoleChange(actor, true, actor, model.RoleViewer, 5)
		if !errors.Is(got, ErrInvalidRoleChange) {
			t.Errorf("self -> viewer (actor=%s) = %v, want ErrInvalidRoleChange", actor, got)
		}
	}
}

func TestDecideRoleChange_LastOwner(t *testing.T) {
	// 最后一名 owner 降级被拒
	got := DecideRoleChange(model.RoleOwner, false, model.RoleOwner, model.RoleAdmin, 1)
	if !errors.Is(got, ErrLastOwner) {
		t.Errorf("最后一名 owner 降级 = %v, want ErrLastOwner", got)
	}
	// 有两名 owner 时允许
	if got := DecideRoleChange(model.RoleOwner, false, model.RoleOwner, model.RoleAdmin, 2); got != nil {
		t.Errorf("存在第二名 owner 时降级应放行, got %v", got)
	}
	// owner -> owner 不触发保护
	if got := DecideRoleChange(model.RoleOwner, false, model.RoleOwner, model.RoleOwner, 1); got != nil {
		t.Errorf("owner -> owner 不应触发最后 owner 保护, got %v", got)
	}
}

// ==================== 移除 ====================

func TestDecideRemoval(t *testing.T) {
	cases := []struct {
		name         string
		actor        model.WorkspaceRole
		target       model.WorkspaceRole
		activeOwners int64
		wantErr      error
	}{
		{"owner 移除普通成员", model.RoleOwner, model.RoleViewer, 1, nil},
		{"owner 移除另一名 owner", model.RoleOwner, model.RoleOwner, 2, nil},
		{"最后一名 owner 被移除", model.RoleOwner, model.RoleOwner, 1, ErrLastOwner},
		{"admin 移除 owner", model.RoleAdmin, model.RoleOwner, 3, ErrForbidden},
		{"admin 移除 manager", model.RoleAdmin, model.RoleManager, 1, nil},
		{"manager 移除成员", model.RoleManager, model.RoleViewer, 5, ErrForbidden},
		{"content 移除成员", model.RoleContent, model.RoleViewer, 5, ErrForbidden},
		{"viewer 移除成员", model.RoleViewer, model.RoleViewer, 5, ErrForbidden},
	}

	for _, c := range cases {
		got := DecideRemoval(c.actor, c.target, c.activeOwners)
		if !errors.Is(got, c.wantErr) && got != c.wantErr {
			t.Errorf("%s: DecideRemoval = %v, want %v", c.name, got, c.wantErr)
		}
	}
}

// ==================== 不变量随机序列测试 ====================

// 随机生成角色变更/移除操作序列，逐一通过决策函数过滤后应用，
// 校验任意时刻激活 owner 数不会归零
func TestOwnerInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		// 初始成员：1 owner + 若干随机角色
		members := []model.WorkspaceRole{model.RoleOwner}
		for i := 0; i < 2+rng.Intn(6); i++ {
			members = append(members, allRoles[rng.Intn(len(allRoles))])
		}

		countOwners := func() int64 {
			var n int64
			for _, r := range members {
				if r == model.RoleOwner {
					n++
				}
			}
			return n
		}

		for step := 0; step < 50; step++ {
			if len(members) == 0 {
				break
			}
			actorIdx := rng.Intn(len(members))
			targetIdx := rng.Intn(len(members))
			actor := members[actorIdx]
			target := members[targetIdx]

			if rng.Intn(2) == 0 {
				// 角色变更
				newRole := allRoles[rng.Intn(len(allRoles))]
				err := DecideRoleChange(actor, actorIdx == targetIdx, target, newRole, countOwners())
				if err == nil {
					members[targetIdx] = newRole
				}
			} else {
				// 移除
				err := DecideRemoval(actor, target, countOwners())
				if err == nil {
					members = append(members[:targetIdx], members[targetIdx+1:]...)
				}
			}

			if countOwners() < 1 {
				t.Fatalf("round %d step %d: 激活 owner 数归零, members=%v", round, step, members)
			}
		}
	}
}
