package handler

import (
	"time"

	"pr-velocity-service/internal/domain"
)

// DTO для запросов и ответов API

type CreateRepositoryRequest struct {
	Name string `json:"name"`
}

type RepositoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewPayload struct {
	Author      string    `json:"author"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// PullRequestPayload — запись PR от коллектора системы контроля версий.
type PullRequestPayload struct {
	Number           int64           `json:"number"`
	Title            string          `json:"title"`
	State            string          `json:"state"`
	Draft            bool            `json:"draft"`
	CreatedAt        time.Time       `json:"created_at"`
	ReadyForReviewAt *time.Time      `json:"ready_for_review_at"`
	MergedAt         *time.Time      `json:"merged_at"`
	ClosedAt         *time.Time      `json:"closed_at"`
	Reviews          []ReviewPayload `json:"reviews"`
}

type PullRequestResponse struct {
	Number              int64      `json:"number"`
	State               string     `json:"state"`
	Draft               bool       `json:"draft"`
	ReadyBucketID       *int64     `json:"ready_bucket_id"`
	FirstReviewBucketID *int64     `json:"first_review_bucket_id"`
	MergedBucketID      *int64     `json:"merged_bucket_id"`
	ClosedBucketID      *int64     `json:"closed_bucket_id"`
	CreatedAt           time.Time  `json:"created_at"`
	ReadyForReviewAt    *time.Time `json:"ready_for_review_at"`
	MergedAt            *time.Time `json:"merged_at"`
	ClosedAt            *time.Time `json:"closed_at"`
}

type WeekBucketResponse struct {
	ID                    int64    `json:"id"`
	Year                  int      `json:"year"`
	Week                  int      `json:"week"`
	BeginDate             string   `json:"begin_date"`
	EndDate               string   `json:"end_date"`
	Started               int      `json:"started"`
	Merged                int      `json:"merged"`
	FirstReviewed         int      `json:"first_reviewed"`
	Cancelled             int      `json:"cancelled"`
	Open                  int      `json:"open"`
	Late                  int      `json:"late"`
	Stale                 int      `json:"stale"`
	AvgHoursToFirstReview *float64 `json:"avg_hours_to_first_review"`
	AvgHoursToMerge       *float64 `json:"avg_hours_to_merge"`
}

type OverviewResponse struct {
	Weeks                 int      `json:"weeks"`
	Buckets               int      `json:"buckets"`
	Started               int      `json:"started"`
	Merged                int      `json:"merged"`
	FirstReviewed         int      `json:"first_reviewed"`
	Cancelled             int      `json:"cancelled"`
	Open                  int      `json:"open"`
	Late                  int      `json:"late"`
	Stale                 int      `json:"stale"`
	AvgHoursToFirstReview *float64 `json:"avg_hours_to_first_review"`
	AvgHoursToMerge       *float64 `json:"avg_hours_to_merge"`
}

type DiscrepancyResponse struct {
	PullRequestNumber int64  `json:"pull_request_number"`
	Milestone         string `json:"milestone"`
	Kind              string `json:"kind"`
	StoredBucketID    *int64 `json:"stored_bucket_id"`
	ExpectedBucketID  *int64 `json:"expected_bucket_id"`
}

type RepairResponse struct {
	DryRun            bool                  `json:"dry_run"`
	Reassigned        int                   `json:"reassigned"`
	Assigned          int                   `json:"assigned"`
	Cleared           int                   `json:"cleared"`
	BucketsRecomputed int                   `json:"buckets_recomputed"`
	Discrepancies     []DiscrepancyResponse `json:"discrepancies"`
}

func toRepositoryResponse(repo *domain.Repo) RepositoryResponse {
	return RepositoryResponse{
		ID:        repo.ID,
		Name:      repo.Name,
		CreatedAt: repo.CreatedAt,
	}
}

func toPullRequestResponse(pr *domain.PullRequest) PullRequestResponse {
	return PullRequestResponse{
		Number:              pr.Number,
		State:               pr.State,
		Draft:               pr.IsDraft,
		ReadyBucketID:       pr.ReadyBucketID,
		FirstReviewBucketID: pr.FirstReviewBucketID,
		MergedBucketID:      pr.MergedBucketID,
		ClosedBucketID:      pr.ClosedBucketID,
		CreatedAt:           pr.CreatedAt,
		ReadyForReviewAt:    pr.ReadyForReviewAt,
		MergedAt:            pr.MergedAt,
		ClosedAt:            pr.ClosedAt,
	}
}

func toWeekBucketResponse(b *domain.WeekBucket) WeekBucketResponse {
	return WeekBucketResponse{
		ID:                    b.ID,
		Year:                  b.Year,
		Week:                  b.Week,
		BeginDate:             b.BeginDate.Format("2006-01-02"),
		EndDate:               b.EndDate.Format("2006-01-02"),
		Started:               b.Started,
		Merged:                b.Merged,
		FirstReviewed:         b.FirstReviewed,
		Cancelled:             b.Cancelled,
		Open:                  b.Open,
		Late:                  b.Late,
		Stale:                 b.Stale,
		AvgHoursToFirstReview: b.AvgHoursToFirstReview,
		AvgHoursToMerge:       b.AvgHoursToMerge,
	}
}

func toOverviewResponse(agg *domain.AggregatedBucketStats) OverviewResponse {
	return OverviewResponse{
		Weeks:                 agg.Weeks,
		Buckets:               agg.Buckets,
		Started:               agg.Started,
		Merged:                agg.Merged,
		FirstReviewed:         agg.FirstReviewed,
		Cancelled:             agg.Cancelled,
		Open:                  agg.Open,
		Late:                  agg.Late,
		Stale:                 agg.Stale,
		AvgHoursToFirstReview: agg.AvgHoursToFirstReview,
		AvgHoursToMerge:       agg.AvgHoursToMerge,
	}
}

func toDiscrepancyResponse(d *domain.Discrepancy) DiscrepancyResponse {
	return DiscrepancyResponse{
		PullRequestNumber: d.Number,
		Milestone:         string(d.Milestone),
		Kind:              string(d.Kind),
		StoredBucketID:    d.StoredBucketID,
		ExpectedBucketID:  d.ExpectedBucketID,
	}
}

func toRepairResponse(report *domain.RepairReport) RepairResponse {
	discrepancies := make([]DiscrepancyResponse, len(report.Discrepancies))
	for i, d := range report.Discrepancies {
		discrepancies[i] = toDiscrepancyResponse(d)
	}
	return RepairResponse{
		DryRun:            report.DryRun,
		Reassigned:        report.Reassigned,
		Assigned:          report.Assigned,
		Cleared:           report.Cleared,
		BucketsRecomputed: report.BucketsRecomputed,
		Discrepancies:     discrepancies,
	}
}
