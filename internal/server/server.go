package server

import (
	"net/http"
	"strings"
	"time"

	"anoa.com/softdesk/internal/config"
	"anoa.com/softdesk/internal/memstore"
	"anoa.com/softdesk/internal/middleware"
	"anoa.com/softdesk/pkg/token"

	commentHttp "anoa.com/softdesk/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/softdesk/internal/modules/comment/repository"
	commentService "anoa.com/softdesk/internal/modules/comment/service"

	contributorHttp "anoa.com/softdesk/internal/modules/contributor/delivery/http"
	contributorRepo "anoa.com/softdesk/internal/modules/contributor/repository"
	contributorService "anoa.com/softdesk/internal/modules/contributor/service"

	issueHttp "anoa.com/softdesk/internal/modules/issue/delivery/http"
	issueRepo "anoa.com/softdesk/internal/modules/issue/repository"
	issueService "anoa.com/softdesk/internal/modules/issue/service"

	projectHttp "anoa.com/softdesk/internal/modules/project/delivery/http"
	projectRepo "anoa.com/softdesk/internal/modules/project/repository"
	projectService "anoa.com/softdesk/internal/modules/project/service"

	searchService "anoa.com/softdesk/internal/modules/search/service"

	statHttp "anoa.com/softdesk/internal/modules/stat/delivery/http"
	statService "anoa.com/softdesk/internal/modules/stat/service"

	userHttp "anoa.com/softdesk/internal/modules/user/delivery/http"
	userRepo "anoa.com/softdesk/internal/modules/user/repository"
	userService "anoa.com/softdesk/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories is the storage the server runs on: PostgreSQL through gorm, or the
// in-memory store.
type Repositories struct {
	Users        userRepo.UserRepository
	Tokens       userRepo.TokenRepository
	Projects     projectRepo.ProjectRepository
	Contributors contributorRepo.ContributorRepository
	Issues       issueRepo.IssueRepository
	Comments     commentRepo.CommentRepository
}

// NewGormRepositories keeps issued tokens in Redis when a client is given and in
// the database otherwise.
func NewGormRepositories(db *gorm.DB, redisClient *redis.Client) Repositories {
	tokens := userRepo.NewTokenRepository(db)
	if redisClient != nil {
		tokens = userRepo.NewRedisTokenRepository(redisClient)
	}

	return Repositories{
		Users:        userRepo.NewUserRepository(db),
		Tokens:       tokens,
		Projects:     projectRepo.NewProjectRepository(db),
		Contributors: contributorRepo.NewContributorRepository(db),
		Issues:       issueRepo.NewIssueRepository(db),
		Comments:     commentRepo.NewCommentRepository(db),
	}
}

func NewMemoryRepositories(store *memstore.Store) Repositories {
	return Repositories{
		Users:        store.Users(),
		Tokens:       store.Tokens(),
		Projects:     store.Projects(),
		Contributors: store.Contributors(),
		Issues:       store.Issues(),
		Comments:     store.Comments(),
	}
}

type Server struct {
	engine *gin.Engine
}

// NewServer wires services and routes. redisClient and meili may be nil; rate limits
// and the search index are then disabled.
func NewServer(cfg *config.Config, repos Repositories, redisClient *redis.Client, meili searchService.MeiliSearchService) *Server {
	tokenManager := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	authSvc := userService.NewAuthService(repos.Users, repos.Tokens, repos.Contributors, tokenManager)
	userHandler := userHttp.NewUserHandler(authSvc)

	projectSvc := projectService.NewProjectService(repos.Projects, repos.Contributors, repos.Issues, meili)
	projectHandler := projectHttp.NewProjectHandler(projectSvc)

	contributorSvc := contributorService.NewContributorService(repos.Contributors, repos.Projects, repos.Users)
	contributorHandler := contributorHttp.NewContributorHandler(contributorSvc)

	issueSvc := issueService.NewIssueService(repos.Issues, repos.Projects, repos.Contributors, meili, redisClient, cfg.RateLimitIssue)
	issueHandler := issueHttp.NewIssueHandler(issueSvc)

	commentSvc := commentService.NewCommentService(repos.Comments, repos.Issues, repos.Projects, repos.Contributors, redisClient, cfg.RateLimitComment)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	statSvc := statService.NewStatService(repos.Projects, repos.Contributors, repos.Issues)
	statHandler := statHttp.NewStatHandler(statSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/healthz"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(repos.Tokens, tokenManager)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", userHandler.Signup)
		auth.POST("/login", userHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", userHandler.Logout)
		protected.POST("/auth/logout-all", userHandler.LogoutAll)

		protected.GET("/users/me", userHandler.Me)
		protected.DELETE("/users/me", userHandler.DeleteMe)

		// Project routes
		protected.POST("/projects", projectHandler.CreateProject)
		protected.GET("/projects", projectHandler.ListProjects)
		protected.GET("/projects/:project_id", projectHandler.GetProject)
		protected.PUT("/projects/:project_id", projectHandler.UpdateProject)
		protected.PATCH("/projects/:project_id", projectHandler.PatchProject)
		protected.DELETE("/projects/:project_id", projectHandler.DeleteProject)
		protected.GET("/projects/:project_id/stats", statHandler.GetProjectStats)

		// Contributor routes
		protected.POST("/projects/:project_id/users", contributorHandler.AddContributor)
		protected.GET("/projects/:project_id/users", contributorHandler.ListContributors)
		protected.GET("/projects/:project_id/users/:contributor_id", contributorHandler.GetContributor)
		protected.DELETE("/projects/:project_id/users/:contributor_id", contributorHandler.RemoveContributor)

		// Issue routes
		protected.POST("/projects/:project_id/issues", issueHandler.CreateIssue)
		protected.GET("/projects/:project_id/issues", issueHandler.ListIssues)
		protected.GET("/projects/:project_id/issues/search", issueHandler.SearchIssues)
		protected.GET("/projects/:project_id/issues/:issue_id", issueHandler.GetIssue)
		protected.PUT("/projects/:project_id/issues/:issue_id", issueHandler.UpdateIssue)
		protected.PATCH("/projects/:project_id/issues/:issue_id", issueHandler.PatchIssue)
		protected.DELETE("/projects/:project_id/issues/:issue_id", issueHandler.DeleteIssue)

		// Comment routes
		protected.POST("/projects/:project_id/issues/:issue_id/comments", commentHandler.CreateComment)
		protected.GET("/projects/:project_id/issues/:issue_id/comments", commentHandler.ListComments)
		protected.GET("/projects/:project_id/issues/:issue_id/comments/:comment_id", commentHandler.GetComment)
		protected.PUT("/projects/:project_id/issues/:issue_id/comments/:comment_id", commentHandler.UpdateComment)
		protected.PATCH("/projects/:project_id/issues/:issue_id/comments/:comment_id", commentHandler.UpdateComment)
		protected.DELETE("/projects/:project_id/issues/:issue_id/comments/:comment_id", commentHandler.DeleteComment)
	}

	return &Server{engine: router}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
