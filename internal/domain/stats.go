package domain

// AggregatedBucketStats представляет сводную статистику по набору бакетов
// нескольких репозиториев. Явный тип со всеми полями вместо динамического
// дописывания полей к синтезированному бакету.
type AggregatedBucketStats struct {
	Weeks   int
	Buckets int

	Started       int
	Merged        int
	FirstReviewed int
	Cancelled     int
	Open          int
	Late          int
	Stale         int

	// Средние считаются взвешенно: вес — соответствующий счётчик бакета.
	// nil, если суммарный вес равен нулю.
	AvgHoursToFirstReview *float64
	AvgHoursToMerge       *float64
}

// DriftKind — вид расхождения между сохранённой ссылкой на бакет и бакетом,
// пересчитанным из веховой метки.
type DriftKind string

const (
	// DriftMisassociated — сохранённая ссылка указывает на бакет, чей
	// диапазон дат не содержит веховую метку.
	DriftMisassociated DriftKind = "misassociated"
	// DriftMissingAssociation — ссылки нет, хотя корректный бакет существует.
	DriftMissingAssociation DriftKind = "missing_association"
	// DriftOrphanedAssociation — ссылка есть, а самой веховой метки нет.
	DriftOrphanedAssociation DriftKind = "orphaned_association"
)

// Discrepancy описывает одно расхождение, найденное аудитором.
type Discrepancy struct {
	PullRequestID    int64
	Number           int64
	Milestone        Milestone
	Kind             DriftKind
	StoredBucketID   *int64
	ExpectedBucketID *int64
}

// RepairReport — результат прогона починки расхождений.
type RepairReport struct {
	DryRun            bool
	Reassigned        int
	Assigned          int
	Cleared           int
	BucketsRecomputed int
	Discrepancies     []*Discrepancy
}
