// workers/profile_refresher.go
package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-learning-system/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// ProfileRefresher re-runs profile aggregation on a fixed interval for every
// attached view, holding the last successfully built view per user. Singleton
// job mode guarantees two refresh cycles for the same user never overlap — a
// tick that fires while the previous cycle is still running is rescheduled.
type ProfileRefresher struct {
	profiles *services.ProfileService
	sched    gocron.Scheduler
	interval time.Duration

	mu    sync.Mutex
	views map[string]*profileEntry
}

type profileEntry struct {
	jobID uuid.UUID

	mu     sync.RWMutex
	view   *services.ProfileView
	loaded bool
}

func NewProfileRefresher(profiles *services.ProfileService, interval time.Duration) (*ProfileRefresher, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	r := &ProfileRefresher{
		profiles: profiles,
		sched:    sched,
		interval: interval,
		views:    make(map[string]*profileEntry),
	}
	sched.Start()
	return r, nil
}

// Attach starts the refresh loop for userID. The first cycle runs
// immediately; attaching an already-attached view is a no-op.
func (r *ProfileRefresher) Attach(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[userID]; ok {
		return nil
	}

	entry := &profileEntry{}
	job, err := r.sched.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() { r.refresh(userID, entry) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	entry.jobID = job.ID()
	r.views[userID] = entry

	log.Printf("👁️ [REFRESH] profile view attached for %s (every %s)", userID, r.interval)
	return nil
}

// Detach cancels the refresh loop and drops the cached view. An in-flight
// cycle is not interrupted; its result lands in an entry nothing reads.
func (r *ProfileRefresher) Detach(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[userID]
	if !ok {
		return
	}
	if err := r.sched.RemoveJob(entry.jobID); err != nil {
		log.Printf("⚠️ [REFRESH] failed to remove refresh job for %s: %v", userID, err)
	}
	delete(r.views, userID)
	log.Printf("👁️ [REFRESH] profile view detached for %s", userID)
}

// Snapshot returns the last successfully refreshed view for an attached
// user. ok=false when the view is not attached or has not completed a cycle
// yet. The view itself may be nil — "no profile" is a valid refreshed state.
func (r *ProfileRefresher) Snapshot(userID string) (*services.ProfileView, bool) {
	r.mu.Lock()
	entry, ok := r.views[userID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	if !entry.loaded {
		return nil, false
	}
	return entry.view, true
}

func (r *ProfileRefresher) refresh(userID string, entry *profileEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	view, err := r.profiles.Aggregate(ctx, userID)
	if err != nil {
		// Keep the last good view; the failure is an operator concern, not
		// something the profile page shows.
		log.Printf("❌ [REFRESH] profile refresh failed for %s: %v", userID, err)
		return
	}

	entry.mu.Lock()
	entry.view = view
	entry.loaded = true
	entry.mu.Unlock()
}

// Shutdown stops all refresh jobs.
func (r *ProfileRefresher) Shutdown() error {
	return r.sched.Shutdown()
}
