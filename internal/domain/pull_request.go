package domain

import (
	"context"
	"time"
)

// Статусы pull request'а.
const (
	PRStateOpen   = "OPEN"
	PRStateClosed = "CLOSED"
)

// Состояния ревью, приходящие от системы контроля версий.
const (
	ReviewStateApproved         = "APPROVED"
	ReviewStateChangesRequested = "CHANGES_REQUESTED"
	ReviewStateCommented        = "COMMENTED"
)

// Milestone — одна из четырёх веховых меток жизненного цикла PR.
type Milestone string

const (
	MilestoneReadyForReview Milestone = "ready_for_review"
	MilestoneFirstReview    Milestone = "first_review"
	MilestoneMerged         Milestone = "merged"
	MilestoneClosed         Milestone = "closed"
)

// Milestones перечисляет все веховые метки в стабильном порядке.
var Milestones = []Milestone{
	MilestoneReadyForReview,
	MilestoneFirstReview,
	MilestoneMerged,
	MilestoneClosed,
}

// PullRequest представляет сущность пул-реквеста в системе.
type PullRequest struct {
	ID      int64
	RepoID  int64
	Number  int64
	Title   string
	State   string
	IsDraft bool

	CreatedAt        time.Time
	ReadyForReviewAt *time.Time
	MergedAt         *time.Time
	ClosedAt         *time.Time

	// Ссылки на бакеты по веховым меткам. Каждая непустая ссылка обязана
	// указывать на бакет того же репозитория, что и сам PR.
	ReadyBucketID       *int64
	FirstReviewBucketID *int64
	MergedBucketID      *int64
	ClosedBucketID      *int64
}

// BucketRefs — набор ссылок на бакеты по четырём веховым меткам.
type BucketRefs struct {
	Ready       *int64
	FirstReview *int64
	Merged      *int64
	Closed      *int64
}

// Refs возвращает текущие ссылки PR на бакеты.
func (p *PullRequest) Refs() BucketRefs {
	return BucketRefs{
		Ready:       p.ReadyBucketID,
		FirstReview: p.FirstReviewBucketID,
		Merged:      p.MergedBucketID,
		Closed:      p.ClosedBucketID,
	}
}

// Get возвращает ссылку для указанной веховой метки.
func (r BucketRefs) Get(m Milestone) *int64 {
	switch m {
	case MilestoneReadyForReview:
		return r.Ready
	case MilestoneFirstReview:
		return r.FirstReview
	case MilestoneMerged:
		return r.Merged
	case MilestoneClosed:
		return r.Closed
	}
	return nil
}

// Set устанавливает ссылку для указанной веховой метки.
func (r *BucketRefs) Set(m Milestone, id *int64) {
	switch m {
	case MilestoneReadyForReview:
		r.Ready = id
	case MilestoneFirstReview:
		r.FirstReview = id
	case MilestoneMerged:
		r.Merged = id
	case MilestoneClosed:
		r.Closed = id
	}
}

// ApplyRefs записывает ссылки на бакеты в поля PR.
func (p *PullRequest) ApplyRefs(refs BucketRefs) {
	p.ReadyBucketID = refs.Ready
	p.FirstReviewBucketID = refs.FirstReview
	p.MergedBucketID = refs.Merged
	p.ClosedBucketID = refs.Closed
}

// Review представляет одно событие ревью на pull request'е.
type Review struct {
	ID            int64
	PullRequestID int64
	Author        string
	State         string
	SubmittedAt   time.Time
}

// ValidFirstReview возвращает самое раннее ревью, отправленное строго позже
// перехода PR в ready-for-review. Ревью до этого момента относятся к
// черновой стадии и намеренно не учитываются. Возвращает nil, если метки
// ready-for-review нет или подходящих ревью не нашлось.
func ValidFirstReview(pr *PullRequest, reviews []*Review) *Review {
	if pr.ReadyForReviewAt == nil {
		return nil
	}

	var first *Review
	for _, rv := range reviews {
		if !rv.SubmittedAt.After(*pr.ReadyForReviewAt) {
			continue
		}
		if first == nil || rv.SubmittedAt.Before(first.SubmittedAt) {
			first = rv
		}
	}
	return first
}

// EarliestApproved возвращает самое раннее ревью в состоянии APPROVED.
// В отличие от ValidFirstReview момент ready-for-review здесь не учитывается:
// именно первое одобрение питает расчёт late/stale.
func EarliestApproved(reviews []*Review) *Review {
	var first *Review
	for _, rv := range reviews {
		if rv.State != ReviewStateApproved {
			continue
		}
		if first == nil || rv.SubmittedAt.Before(first.SubmittedAt) {
			first = rv
		}
	}
	return first
}

// PRRepository определяет контракт для работы с хранилищем pull request'ов.
type PRRepository interface {
	// Upsert создаёт PR либо обновляет его веховые метки и атрибуты.
	// Ссылки на бакеты апсертом не трогаются.
	Upsert(ctx context.Context, pr *PullRequest) (*PullRequest, error)
	GetByID(ctx context.Context, id int64) (*PullRequest, error)
	GetByNumber(ctx context.Context, repoID, number int64) (*PullRequest, error)
	ListByRepo(ctx context.Context, repoID int64) ([]*PullRequest, error)
	// UpdateBucketRefs записывает все четыре ссылки одним запросом.
	UpdateBucketRefs(ctx context.Context, prID int64, refs BucketRefs) error
	// EarliestMilestone возвращает самую раннюю веховую метку по всем PR
	// репозитория; nil, если PR нет.
	EarliestMilestone(ctx context.Context, repoID int64) (*time.Time, error)
}

// ReviewRepository определяет контракт для работы с хранилищем ревью.
type ReviewRepository interface {
	// Upsert создаёт ревью; повторная вставка того же события игнорируется.
	Upsert(ctx context.Context, review *Review) error
	ListByPR(ctx context.Context, prID int64) ([]*Review, error)
	// ListByRepo возвращает все ревью репозитория, сгруппированные по PR.
	ListByRepo(ctx context.Context, repoID int64) (map[int64][]*Review, error)
}
