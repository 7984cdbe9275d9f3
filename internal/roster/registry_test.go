package roster

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mergington/activities/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() []domain.Activity {
	return []domain.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
	}
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := New(testSeed(), opts...)
	require.NoError(t, err)
	return r
}

func TestList_ReturnsSeed(t *testing.T) {
	r := newTestRegistry(t)

	all := r.List()
	require.Len(t, all, 3)

	chess := all["Chess Club"]
	assert.Equal(t, "Learn strategies and compete in chess tournaments", chess.Description)
	assert.Equal(t, "Fridays, 3:30 PM - 5:00 PM", chess.Schedule)
	assert.Equal(t, 12, chess.MaxParticipants)
	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)
}

func TestList_SnapshotIsNotAliased(t *testing.T) {
	r := newTestRegistry(t)

	snap := r.List()
	chess := snap["Chess Club"]
	chess.Participants[0] = "intruder@mergington.edu"
	snap["Chess Club"] = chess
	delete(snap, "Gym Class")

	fresh := r.List()
	assert.Len(t, fresh, 3)
	assert.Equal(t, "michael@mergington.edu", fresh["Chess Club"].Participants[0])
}

func TestNew_CopiesSeed(t *testing.T) {
	seed := testSeed()
	r, err := New(seed)
	require.NoError(t, err)

	seed[0].Participants[0] = "changed@mergington.edu"

	a, err := r.Get("Chess Club")
	require.NoError(t, err)
	assert.Equal(t, "michael@mergington.edu", a.Participants[0])
}

func TestNew_IndependentInstances(t *testing.T) {
	a := newTestRegistry(t)
	b := newTestRegistry(t)

	_, err := a.Signup("Chess Club", "only-in-a@mergington.edu")
	require.NoError(t, err)

	assert.Len(t, a.List()["Chess Club"].Participants, 3)
	assert.Len(t, b.List()["Chess Club"].Participants, 2)
}

func TestNames_SeedOrder(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"Chess Club", "Programming Class", "Gym Class"}, r.Names())
}

func TestGet(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.Get("Gym Class")
	require.NoError(t, err)
	assert.Equal(t, "Gym Class", a.Name)
	assert.Equal(t, 30, a.MaxParticipants)

	_, err = r.Get("Knitting Circle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignup_NewStudent(t *testing.T) {
	r := newTestRegistry(t)

	conf, err := r.Signup("Chess Club", "newstudent@mergington.edu")
	require.NoError(t, err)
	assert.Contains(t, conf.Message, "newstudent@mergington.edu")
	assert.Contains(t, conf.Message, "Chess Club")
	assert.Equal(t, "Signed up newstudent@mergington.edu for Chess Club", conf.Message)

	participants := r.List()["Chess Club"].Participants
	assert.Equal(t, []string{
		"michael@mergington.edu",
		"daniel@mergington.edu",
		"newstudent@mergington.edu",
	}, participants)
}

func TestSignup_AlreadyRegistered(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Signup("Chess Club", "michael@mergington.edu")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Contains(t, err.Error(), "already signed up")

	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"},
		r.List()["Chess Club"].Participants)
}

func TestSignup_ActivityNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Signup("Nonexistent Club", "a@b.edu")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Activity not found", err.Error())
}

func TestSignup_CaseSensitiveEmails(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Signup("Chess Club", "x@y.edu")
	require.NoError(t, err)
	_, err = r.Signup("Chess Club", "X@Y.edu")
	require.NoError(t, err)

	participants := r.List()["Chess Club"].Participants
	assert.Contains(t, participants, "x@y.edu")
	assert.Contains(t, participants, "X@Y.edu")
	assert.Len(t, participants, 4)
}

func TestSignup_NoNormalization(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Signup("Chess Club", " michael@mergington.edu")
	require.NoError(t, err)
	assert.Contains(t, r.List()["Chess Club"].Participants, " michael@mergington.edu")
}

func TestSignup_MultipleActivities(t *testing.T) {
	r := newTestRegistry(t)
	email := "versatile@mergington.edu"

	_, err := r.Signup("Chess Club", email)
	require.NoError(t, err)
	_, err = r.Signup("Programming Class", email)
	require.NoError(t, err)

	all := r.List()
	assert.Contains(t, all["Chess Club"].Participants, email)
	assert.Contains(t, all["Programming Class"].Participants, email)
	assert.NotContains(t, all["Gym Class"].Participants, email)
}

func TestSignup_CapacityNotEnforced(t *testing.T) {
	r := newTestRegistry(t)

	for i := 0; i < 15; i++ {
		_, err := r.Signup("Chess Club", fmt.Sprintf("student%d@mergington.edu", i))
		require.NoError(t, err)
	}

	chess := r.List()["Chess Club"]
	assert.Greater(t, len(chess.Participants), chess.MaxParticipants)
}

func TestUnregister_ExistingStudent(t *testing.T) {
	r := newTestRegistry(t)

	conf, err := r.Unregister("Chess Club", "michael@mergington.edu")
	require.NoError(t, err)
	assert.Contains(t, conf.Message, "Removed michael@mergington.edu")

	assert.Equal(t, []string{"daniel@mergington.edu"}, r.List()["Chess Club"].Participants)
}

func TestUnregister_NotRegistered(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Unregister("Chess Club", "notastudent@mergington.edu")
	require.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "not signed up")

	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"},
		r.List()["Chess Club"].Participants)
}

func TestUnregister_ActivityNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Unregister("Nonexistent Club", "student@mergington.edu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnregister_CaseSensitive(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Unregister("Chess Club", "MICHAEL@mergington.edu")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestSignupThenUnregister_RestoresRoster(t *testing.T) {
	r := newTestRegistry(t)
	before := r.List()["Programming Class"].Participants

	_, err := r.Signup("Programming Class", "testflow@mergington.edu")
	require.NoError(t, err)
	_, err = r.Unregister("Programming Class", "testflow@mergington.edu")
	require.NoError(t, err)

	assert.Equal(t, before, r.List()["Programming Class"].Participants)
}

func TestUnregister_PreservesOrder(t *testing.T) {
	r := newTestRegistry(t)
	for _, e := range []string{"a@m.edu", "b@m.edu", "c@m.edu"} {
		_, err := r.Signup("Gym Class", e)
		require.NoError(t, err)
	}

	_, err := r.Unregister("Gym Class", "olivia@mergington.edu")
	require.NoError(t, err)

	assert.Equal(t, []string{"john@mergington.edu", "a@m.edu", "b@m.edu", "c@m.edu"},
		r.List()["Gym Class"].Participants)
}

func TestNotFoundForAllUnknownNames(t *testing.T) {
	r := newTestRegistry(t)

	for _, name := range []string{"", "chess club", "Chess Club ", "Nonexistent Club", "Chess%20Club"} {
		_, err := r.Signup(name, "a@b.edu")
		assert.ErrorIs(t, err, ErrNotFound, "signup %q", name)
		_, err = r.Unregister(name, "a@b.edu")
		assert.ErrorIs(t, err, ErrNotFound, "unregister %q", name)
	}
}

func TestListener_ReceivesEvents(t *testing.T) {
	fixed := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	var got []domain.RosterEvent
	r := newTestRegistry(t,
		WithListener(func(e domain.RosterEvent) { got = append(got, e) }),
		WithClock(func() time.Time { return fixed }),
	)

	_, err := r.Signup("Chess Club", "newstudent@mergington.edu")
	require.NoError(t, err)
	_, err = r.Signup("Chess Club", "newstudent@mergington.edu")
	require.Error(t, err)
	_, err = r.Unregister("Chess Club", "michael@mergington.edu")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.EventSignup, got[0].Type)
	assert.Equal(t, "Chess Club", got[0].Activity)
	assert.Equal(t, "newstudent@mergington.edu", got[0].Email)
	assert.Equal(t, 3, got[0].ParticipantCount)
	assert.Equal(t, fixed, got[0].OccurredAt)
	assert.NotEmpty(t, got[0].ID)

	assert.Equal(t, domain.EventUnregister, got[1].Type)
	assert.Equal(t, 2, got[1].ParticipantCount)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestListener_CanReadRegistry(t *testing.T) {
	var r *Registry
	var seen int
	r = newTestRegistry(t, WithListener(func(e domain.RosterEvent) {
		// the lock is released before listeners run
		seen = len(r.List()[e.Activity].Participants)
	}))

	_, err := r.Signup("Chess Club", "newstudent@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestConcurrentSignup_SameEmailOnce(t *testing.T) {
	r := newTestRegistry(t)

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Signup("Chess Club", "racer@mergington.edu"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	count := 0
	for _, p := range r.List()["Chess Club"].Participants {
		if p == "racer@mergington.edu" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestConcurrentSignupAndList(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("s%d@mergington.edu", i)
			_, _ = r.Signup("Chess Club", email)
			_, _ = r.Signup("Gym Class", email)
			_, _ = r.Unregister("Gym Class", email)
		}(i)
		go func() {
			defer wg.Done()
			for _, a := range r.List() {
				seen := map[string]bool{}
				for _, p := range a.Participants {
					assert.False(t, seen[p], "duplicate %s in %s", p, a.Name)
					seen[p] = true
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"john@mergington.edu", "olivia@mergington.edu"},
		r.List()["Gym Class"].Participants)
}

func TestListener_SeesMutationOrder(t *testing.T) {
	var mu sync.Mutex
	var counts []int
	r := newTestRegistry(t, WithListener(func(e domain.RosterEvent) {
		if e.Activity != "Chess Club" {
			return
		}
		mu.Lock()
		counts = append(counts, e.ParticipantCount)
		mu.Unlock()
	}))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Signup("Chess Club", fmt.Sprintf("order%d@mergington.edu", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Signup-only traffic grows the roster by one per event, so delivery
	// in mutation order means strictly consecutive counts.
	require.Len(t, counts, workers)
	for i, c := range counts {
		assert.Equal(t, 3+i, c, "event %d", i)
	}
}
