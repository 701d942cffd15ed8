package lifecycle

import "context"

// MockKind identifies the practice-interview track a mock record belongs to.
// Values mirror the stage column on the mocks table.
type MockKind string

const (
	MockScreening MockKind = "screening"
	MockTheory    MockKind = "techmock"
	MockReal      MockKind = "realmock"
)

// MockChecker answers whether a scheduled or completed mock record exists for
// a candidate. Implemented against the mocks table in production and by an
// in-memory fake in tests.
type MockChecker interface {
	HasScheduled(ctx context.Context, candidateID string, kind MockKind) (bool, error)
	HasCompleted(ctx context.Context, candidateID string, kind MockKind) (bool, error)
}

// mockGate declares the mock record required before a mock-managed sub-status
// may be set directly. Sub-statuses absent from the table are not gated.
type mockGate struct {
	kind      MockKind
	completed bool // false → a scheduled mock suffices
	cause     string
}

// mockGates prevents direct sub-status edits from bypassing the mock
// scheduling/feedback flow.
var mockGates = map[SubStatus]mockGate{
	SubScreeningScheduled: {MockScreening, false,
		"cannot set SCREENING_SCHEDULED without a scheduled screening mock"},
	SubScreeningPassed: {MockScreening, true,
		"cannot set SCREENING_PASSED without a completed screening mock"},
	SubScreeningFailed: {MockScreening, true,
		"cannot set SCREENING_FAILED without a completed screening mock"},
	SubMockTheoryScheduled: {MockTheory, false,
		"cannot set MOCK_THEORY_SCHEDULED without a scheduled theory mock"},
	SubMockTheoryPassed: {MockTheory, true,
		"cannot set MOCK_THEORY_PASSED without a completed theory mock"},
	SubMockTheoryFailed: {MockTheory, true,
		"cannot set MOCK_THEORY_FAILED without a completed theory mock"},
	SubMockRealScheduled: {MockReal, false,
		"cannot set MOCK_REAL_SCHEDULED without a scheduled real mock"},
	SubMockRealPassed: {MockReal, true,
		"cannot set MOCK_REAL_PASSED without a completed real mock"},
	SubMockRealFailed: {MockReal, true,
		"cannot set MOCK_REAL_FAILED without a completed real mock"},
}
