package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"listhub_v1_202602/internal/controller"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/policy"
	"listhub_v1_202602/internal/repository"
)

// InitRoutes 注册所有路由
// 工作区子资源统一挂在 WorkspaceMember 中间件之后，
// 进入处理器时已保证当前用户是该工作区的激活成员
func InitRoutes(r *gin.Engine,
	workspaceRepo repository.WorkspaceRepository,
	memberRepo repository.MemberRepository,
	authCtrl *controller.AuthController,
	workspaceCtrl *controller.WorkspaceController,
	memberCtrl *controller.MemberController,
	productCtrl *controller.ProductController,
	auditCtrl *controller.AuditController,
	uploadCtrl *controller.UploadController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api/v1")
	{
		// auth 认证组，无需登录
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtrl.Register)
			auth.POST("/login", authCtrl.Login)
			auth.POST("/refresh", authCtrl.RefreshToken)
			auth.GET("/google/redirect", authCtrl.GoogleRedirect)
			auth.GET("/google/callback", authCtrl.GoogleCallback)
		}

		// 以下全部需要登录
		authed := api.Group("")
		authed.Use(middleware.JWTAuth())
		{
			authed.GET("/auth/me", authCtrl.Profile)
			authed.POST("/auth/logout", authCtrl.Logout)

			// workspace 工作区组
			authed.GET("/workspaces", workspaceCtrl.List)
			authed.POST("/workspaces", workspaceCtrl.Create)

			// 工作区内资源，要求激活成员身份
			ws := authed.Group("/workspaces/:workspaceId")
			ws.Use(middleware.WorkspaceMember(workspaceRepo, memberRepo))
			{
				ws.GET("", workspaceCtrl.Get)
				ws.PUT("", workspaceCtrl.Update)
				ws.DELETE("", workspaceCtrl.Delete)

				// member 成员组
				// 邀请/变更/移除的细粒度策略在服务层事务内判定，
				// 这里的权限中间件只挡掉明显无权的角色
				members := ws.Group("/members")
				{
					members.GET("", memberCtrl.List)
					members.POST("", middleware.RequireAnyPermission(policy.PermManageMembers, policy.PermInviteMembers), memberCtrl.Invite)
					members.PUT("/:memberId", middleware.RequirePermission(policy.PermManageMembers), memberCtrl.UpdateRole)
					members.DELETE("/:memberId", middleware.RequirePermission(policy.PermManageMembers), memberCtrl.Remove)
				}

				// product 商品组
				products := ws.Group("/products")
				{
					products.GET("", productCtrl.List)
					products.GET("/:productId", productCtrl.Get)
					products.POST("", middleware.RequirePermission(policy.PermProductsWrite), productCtrl.Create)
					products.PUT("/:productId", middleware.RequirePermission(policy.PermProductsWrite), productCtrl.Update)
					products.DELETE("/:productId", middleware.RequirePermission(policy.PermProductsWrite), productCtrl.Delete)
					products.POST("/:productId/images", middleware.RequirePermission(policy.PermProductsWrite), uploadCtrl.UploadProductImage)
				}

				// audit 审计组
				ws.GET("/audit-logs", middleware.RequirePermission(policy.PermAuditView), auditCtrl.List)
			}
		}
	}
}
