package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/pkg/ai"
)

type stubFetcher struct {
	mu          sync.Mutex
	courses     []models.Course
	coursesErr  error
	assignments map[int64][]models.RawAssignment
	delays      map[int64]time.Duration
	requested   []int64
}

func (s *stubFetcher) FetchCourses(context.Context) ([]models.Course, error) {
	return s.courses, s.coursesErr
}

func (s *stubFetcher) FetchAssignments(_ context.Context, courseID int64) []models.RawAssignment {
	if delay := s.delays[courseID]; delay > 0 {
		time.Sleep(delay)
	}
	s.mu.Lock()
	s.requested = append(s.requested, courseID)
	s.mu.Unlock()
	return s.assignments[courseID]
}

type recordingRecommender struct {
	inner Recommender
	seen  []models.Candidate
}

func (r *recordingRecommender) Recommend(ctx context.Context, candidates []models.Candidate, prefs models.Preferences) []models.Assignment {
	r.seen = append(r.seen, candidates...)
	return r.inner.Recommend(ctx, candidates, prefs)
}

func newTestPlanner(recommender Recommender) Planner {
	return NewPlanner(NewAssignmentFilter(30), recommender, 4, zerolog.Nop())
}

func plannerFixture() *stubFetcher {
	submittedAt := timePointer(fixedNow.Add(-time.Hour))
	return &stubFetcher{
		courses: []models.Course{{ID: 1, Name: "Biology"}, {ID: 2, Name: "History"}, {ID: 3, Name: "Broken"}},
		assignments: map[int64][]models.RawAssignment{
			1: {
				{ID: 11, Name: "Lab report", DueAt: timePointer(fixedNow.AddDate(0, 0, 6))},
				{ID: 12, Name: "Old quiz", DueAt: timePointer(fixedNow.AddDate(0, 0, -1))},
				{ID: 13, Name: "Reading", DueAt: timePointer(fixedNow.AddDate(0, 0, 2))},
			},
			2: {
				{ID: 21, Name: "Essay", DueAt: timePointer(fixedNow.AddDate(0, 0, 12)), PointsPossible: floatPointer(50)},
				{ID: 22, Name: "Graded essay", DueAt: timePointer(fixedNow.AddDate(0, 0, 3)), Submission: &models.Submission{SubmittedAt: submittedAt, WorkflowState: models.WorkflowStateGraded}},
				{ID: 23, Name: "Final", DueAt: timePointer(fixedNow.AddDate(0, 0, 60))},
			},
		},
		delays: map[int64]time.Duration{1: 15 * time.Millisecond},
	}
}

func TestPlannerRunProducesOrderedList(t *testing.T) {
	fetcher := plannerFixture()
	recommender := &recordingRecommender{inner: NewStartDateRecommender(nil, "", 0, zerolog.Nop())}
	planner := newTestPlanner(recommender)

	prefs := models.Preferences{BufferDays: 3}
	assignments, err := planner.Run(context.Background(), fetcher, prefs, fixedNow)
	require.NoError(t, err)

	require.ElementsMatch(t, []int64{1, 2, 3}, fetcher.requested)
	require.Len(t, recommender.seen, 3, "only filtered assignments reach the recommender")

	ids := make([]int64, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
		require.Equal(t, assignment.DueDate.AddDate(0, 0, -3), *assignment.SuggestedStartDate)
		require.Equal(t, 3, assignment.RecommendedBufferDays)
		require.False(t, assignment.AIAnalyzed)
	}
	require.Equal(t, []int64{13, 11, 21}, ids)
	require.Equal(t, models.UrgencyCritical, assignments[0].Urgency)
	require.Equal(t, models.UrgencyMedium, assignments[1].Urgency)
	require.Equal(t, models.UrgencyLow, assignments[2].Urgency)
	require.Equal(t, "History", assignments[2].CourseName)
	require.Equal(t, int64(2), assignments[2].CourseID)
}

func TestPlannerRunIsIdempotent(t *testing.T) {
	planner := newTestPlanner(NewStartDateRecommender(nil, "", 0, zerolog.Nop()))
	prefs := models.Preferences{BufferDays: 3}

	first, err := planner.Run(context.Background(), plannerFixture(), prefs, fixedNow)
	require.NoError(t, err)
	second, err := planner.Run(context.Background(), plannerFixture(), prefs, fixedNow)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestPlannerRunFailsWithoutCourses(t *testing.T) {
	planner := newTestPlanner(NewStartDateRecommender(nil, "", 0, zerolog.Nop()))

	_, err := planner.Run(context.Background(), &stubFetcher{}, models.Preferences{BufferDays: 3}, fixedNow)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, ErrNoCourses)
	require.Equal(t, "No courses found", fetchErr.Error())
}

func TestPlannerRunFailsWhenCourseListingFails(t *testing.T) {
	planner := newTestPlanner(NewStartDateRecommender(nil, "", 0, zerolog.Nop()))
	cause := errors.New("connection refused")

	assignments, err := planner.Run(context.Background(), &stubFetcher{coursesErr: cause}, models.Preferences{BufferDays: 3}, fixedNow)

	require.Nil(t, assignments)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, cause)
	require.Contains(t, fetchErr.Message, "connection refused")
}

func TestPlannerRunFailsWhenInterrupted(t *testing.T) {
	planner := newTestPlanner(NewStartDateRecommender(nil, "", 0, zerolog.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := planner.Run(ctx, plannerFixture(), models.Preferences{BufferDays: 3}, fixedNow)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlannerRunWithAdvisorKeepsBaselineUrgency(t *testing.T) {
	advisor := &scriptedAdvisor{replies: map[string]int{"Lab report": 9, "Reading": 1, "Essay": 5}}
	recommender := NewStartDateRecommender(func(string) (ai.LeadTimeAdvisor, error) { return advisor, nil }, "", 0, zerolog.Nop())
	planner := newTestPlanner(recommender)

	prefs := models.Preferences{BufferDays: 3, EnableAI: true, AIAPIKey: "k"}
	assignments, err := planner.Run(context.Background(), plannerFixture(), prefs, fixedNow)
	require.NoError(t, err)
	require.Len(t, assignments, 3)

	byID := map[int64]models.Assignment{}
	for _, assignment := range assignments {
		byID[assignment.ID] = assignment
		require.True(t, assignment.AIAnalyzed)
		require.GreaterOrEqual(t, assignment.RecommendedBufferDays, ai.MinLeadDays)
		require.LessOrEqual(t, assignment.RecommendedBufferDays, ai.MaxLeadDays)
		require.Equal(t, assignment.DueDate.AddDate(0, 0, -assignment.RecommendedBufferDays), *assignment.SuggestedStartDate)
	}
	require.Equal(t, 9, byID[11].RecommendedBufferDays)
	require.Equal(t, models.UrgencyMedium, byID[11].Urgency)
}
