package handler

import (
	"net/http"
	"strconv"

	"pr-velocity-service/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// APIHandler объединяет обработчики HTTP-запросов движка метрик.
type APIHandler struct {
	*BaseHandler
	repos      domain.RepoRepository
	buckets    domain.BucketRepository
	classifier domain.ClassifierUseCase
	stats      domain.StatsUseCase
	audit      domain.AuditUseCase
}

// NewAPIHandler создает новый экземпляр APIHandler.
func NewAPIHandler(
	repos domain.RepoRepository,
	buckets domain.BucketRepository,
	classifier domain.ClassifierUseCase,
	stats domain.StatsUseCase,
	audit domain.AuditUseCase,
	logger *logrus.Logger,
) *APIHandler {
	return &APIHandler{
		BaseHandler: NewBaseHandler(logger),
		repos:       repos,
		buckets:     buckets,
		classifier:  classifier,
		stats:       stats,
		audit:       audit,
	}
}

// RegisterRoutes регистрирует маршруты API.
func (h *APIHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/repositories", h.CreateRepository)
	e.GET("/repositories", h.ListRepositories)
	e.POST("/repositories/:name/pull-requests", h.IngestPullRequest)
	e.POST("/repositories/:name/generate", h.GenerateForRepository)
	e.GET("/repositories/:name/weeks", h.ListWeeks)
	e.GET("/repositories/:name/drift", h.AuditDrift)
	e.POST("/repositories/:name/repair", h.Repair)
	e.GET("/stats/overview", h.Overview)
}

// CreateRepository обрабатывает регистрацию нового репозитория.
func (h *APIHandler) CreateRepository(c echo.Context) error {
	logEntry := h.logRequest(c, "create_repository")

	var req CreateRepositoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, toErrorResponse("BAD_REQUEST", "invalid request body"))
	}
	if req.Name == "" {
		return h.respondError(c, logEntry, domain.ErrInvalidRepoName)
	}

	repo, err := h.repos.Create(c.Request().Context(), req.Name)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	logEntry.WithField("repository", repo.Name).Info("Repository created")
	return c.JSON(http.StatusCreated, toRepositoryResponse(repo))
}

// ListRepositories возвращает все отслеживаемые репозитории.
func (h *APIHandler) ListRepositories(c echo.Context) error {
	logEntry := h.logRequest(c, "list_repositories")

	repos, err := h.repos.GetAll(c.Request().Context())
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	result := make([]RepositoryResponse, len(repos))
	for i, repo := range repos {
		result[i] = toRepositoryResponse(repo)
	}
	return c.JSON(http.StatusOK, result)
}

// IngestPullRequest принимает запись PR от коллектора и классифицирует ее.
func (h *APIHandler) IngestPullRequest(c echo.Context) error {
	logEntry := h.logRequest(c, "ingest_pull_request")

	repo, err := h.repos.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	var payload PullRequestPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, toErrorResponse("BAD_REQUEST", "invalid request body"))
	}

	pr := &domain.PullRequest{
		Number:           payload.Number,
		Title:            payload.Title,
		State:            payload.State,
		IsDraft:          payload.Draft,
		CreatedAt:        payload.CreatedAt,
		ReadyForReviewAt: payload.ReadyForReviewAt,
		MergedAt:         payload.MergedAt,
		ClosedAt:         payload.ClosedAt,
	}
	reviews := make([]*domain.Review, len(payload.Reviews))
	for i, rv := range payload.Reviews {
		reviews[i] = &domain.Review{
			Author:      rv.Author,
			State:       rv.State,
			SubmittedAt: rv.SubmittedAt,
		}
	}

	classified, err := h.classifier.IngestPullRequest(c.Request().Context(), repo.ID, pr, reviews)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	logEntry.WithFields(logrus.Fields{
		"repository": repo.Name,
		"number":     classified.Number,
	}).Info("Pull request ingested")
	return c.JSON(http.StatusOK, toPullRequestResponse(classified))
}

// GenerateForRepository достраивает бакеты репозитория и пересчитывает статистику.
func (h *APIHandler) GenerateForRepository(c echo.Context) error {
	logEntry := h.logRequest(c, "generate_for_repository")

	repo, err := h.repos.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	buckets, err := h.stats.GenerateForRepo(c.Request().Context(), repo.ID)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	logEntry.WithFields(logrus.Fields{
		"repository": repo.Name,
		"buckets":    len(buckets),
	}).Info("Buckets generated")
	return c.JSON(http.StatusOK, map[string]any{
		"repository": repo.Name,
		"buckets":    len(buckets),
	})
}

// ListWeeks возвращает недельную статистику репозитория.
func (h *APIHandler) ListWeeks(c echo.Context) error {
	logEntry := h.logRequest(c, "list_weeks")

	repo, err := h.repos.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	buckets, err := h.buckets.ListByRepo(c.Request().Context(), repo.ID)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	weeks := make([]WeekBucketResponse, len(buckets))
	for i, b := range buckets {
		weeks[i] = toWeekBucketResponse(b)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"repository": repo.Name,
		"weeks":      weeks,
	})
}

// Overview возвращает сводную статистику по всем репозиториям.
func (h *APIHandler) Overview(c echo.Context) error {
	logEntry := h.logRequest(c, "overview")

	weeks := 12
	if raw := c.QueryParam("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, toErrorResponse("BAD_REQUEST", "weeks must be a positive integer"))
		}
		weeks = parsed
	}

	agg, err := h.stats.Overview(c.Request().Context(), weeks)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}
	return c.JSON(http.StatusOK, toOverviewResponse(agg))
}

// AuditDrift возвращает расхождения классификации без их исправления.
func (h *APIHandler) AuditDrift(c echo.Context) error {
	logEntry := h.logRequest(c, "audit_drift")

	repo, err := h.repos.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	discrepancies, err := h.audit.Audit(c.Request().Context(), repo.ID)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	logEntry.WithFields(logrus.Fields{
		"repository":    repo.Name,
		"discrepancies": len(discrepancies),
	}).Info("Drift audit finished")

	result := make([]DiscrepancyResponse, len(discrepancies))
	for i, d := range discrepancies {
		result[i] = toDiscrepancyResponse(d)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"repository":    repo.Name,
		"discrepancies": result,
	})
}

// Repair чинит расхождения классификации. dry_run=true только считает.
func (h *APIHandler) Repair(c echo.Context) error {
	logEntry := h.logRequest(c, "repair")

	repo, err := h.repos.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	dryRun := false
	if raw := c.QueryParam("dry_run"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, toErrorResponse("BAD_REQUEST", "dry_run must be a boolean"))
		}
		dryRun = parsed
	}

	report, err := h.audit.Repair(c.Request().Context(), repo.ID, dryRun)
	if err != nil {
		return h.respondError(c, logEntry, err)
	}

	logEntry.WithFields(logrus.Fields{
		"repository": repo.Name,
		"dry_run":    report.DryRun,
		"reassigned": report.Reassigned,
		"assigned":   report.Assigned,
		"cleared":    report.Cleared,
	}).Info("Repair finished")
	return c.JSON(http.StatusOK, toRepairResponse(report))
}

// respondError логирует ошибку и отвечает по маппингу domain → HTTP.
func (h *APIHandler) respondError(c echo.Context, logEntry *logrus.Entry, err error) error {
	status := getHTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logEntry.WithError(err).Error("Request failed")
	} else {
		logEntry.WithError(err).Warn("Request rejected")
	}

	if httpErr, ok := domain.ToHTTPError(err); ok {
		return c.JSON(status, domain.ErrorResponse{Error: httpErr})
	}
	return c.JSON(status, toErrorResponse("INTERNAL_ERROR", err.Error()))
}
