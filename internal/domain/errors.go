package domain

import "errors"

// Domain errors (для бизнес-логики)
var (
	// Validation errors
	ErrInvalidRepoName = errors.New("invalid repository name")
	ErrInvalidPRNumber = errors.New("invalid pull request number")
	ErrMilestoneOrder  = errors.New("milestone timestamps out of order")

	// Data integrity errors: признак порчи данных выше по течению,
	// никогда не исправляются молча
	ErrBucketRepoMismatch = errors.New("bucket belongs to another repository")
	ErrBucketOverlap      = errors.New("week bucket date range overlaps an existing bucket")
	ErrNegativeDuration   = errors.New("negative weekday duration")

	// Repo errors
	ErrRepoNotFound      = errors.New("repository not found")
	ErrRepoAlreadyExists = errors.New("repository already exists")

	// PR / bucket errors
	ErrPRNotFound     = errors.New("pull request not found")
	ErrBucketNotFound = errors.New("week bucket not found")
)

// HTTPError для ответа API
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error HTTPError `json:"error"`
}

// Маппинг domain ошибок в HTTP ошибки
var ErrorMapping = map[error]HTTPError{
	ErrInvalidRepoName:    {Code: "INVALID_REPO_NAME", Message: "repository name must not be empty"},
	ErrInvalidPRNumber:    {Code: "INVALID_PR_NUMBER", Message: "pull request number must be positive"},
	ErrMilestoneOrder:     {Code: "MILESTONE_ORDER", Message: "milestone timestamps must be monotonic"},
	ErrBucketRepoMismatch: {Code: "DATA_INTEGRITY", Message: "bucket reference crosses repository boundary"},
	ErrBucketOverlap:      {Code: "DATA_INTEGRITY", Message: "week bucket ranges overlap"},
	ErrNegativeDuration:   {Code: "DATA_INTEGRITY", Message: "computed duration is negative"},
	ErrRepoNotFound:       {Code: "NOT_FOUND", Message: "repository not found"},
	ErrPRNotFound:         {Code: "NOT_FOUND", Message: "pull request not found"},
	ErrBucketNotFound:     {Code: "NOT_FOUND", Message: "week bucket not found"},
	ErrRepoAlreadyExists:  {Code: "REPO_EXISTS", Message: "repository name already exists"},
}

// ToHTTPError преобразует domain ошибку в HTTP ошибку
func ToHTTPError(err error) (HTTPError, bool) {
	for domainErr, httpErr := range ErrorMapping {
		if errors.Is(err, domainErr) {
			return httpErr, true
		}
	}
	return HTTPError{}, false
}
