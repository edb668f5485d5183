package expense

import (
	"context"
	"sync"
)

// DefaultWorkerCount is the default number of concurrent audit workers.
const DefaultWorkerCount = 4

// RecordSource exposes stored rows without the invariant checks that
// Repository reads apply.
type RecordSource interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListRecords(ctx context.Context, userID int64) ([]Record, error)
}

// Violation is a stored row that Restore rejects.
type Violation struct {
	ExpenseID string
	Reason    string
}

// AuditResult summarises the audit of one user's rows.
type AuditResult struct {
	RecordsChecked int
	Violations     []Violation
	Err            error
}

// AuditService checks stored expenses against the record invariants.
type AuditService struct {
	source      RecordSource
	workerCount int
}

func NewAuditService(source RecordSource, workerCount int) *AuditService {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &AuditService{source: source, workerCount: workerCount}
}

// AllUsers lists every user that owns stored expenses.
func (s *AuditService) AllUsers(ctx context.Context) ([]int64, error) {
	return s.source.ListUserIDs(ctx)
}

// AuditUser checks every row owned by userID.
func (s *AuditService) AuditUser(ctx context.Context, userID int64) *AuditResult {
	records, err := s.source.ListRecords(ctx, userID)
	if err != nil {
		return &AuditResult{Err: err}
	}

	result := &AuditResult{RecordsChecked: len(records), Violations: []Violation{}}
	for _, r := range records {
		if _, err := Restore(r); err != nil {
			result.Violations = append(result.Violations, Violation{ExpenseID: r.ID, Reason: err.Error()})
		}
	}
	return result
}

// AuditUsers audits several users concurrently.
func (s *AuditService) AuditUsers(ctx context.Context, userIDs []int64) map[int64]*AuditResult {
	jobs := make(chan int64, len(userIDs))
	results := make(map[int64]*AuditResult, len(userIDs))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				var res *AuditResult
				if err := ctx.Err(); err != nil {
					res = &AuditResult{Err: err}
				} else {
					res = s.AuditUser(ctx, userID)
				}
				mu.Lock()
				results[userID] = res
				mu.Unlock()
			}
		}()
	}

	for _, id := range userIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return results
}
