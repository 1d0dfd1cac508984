/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/forgeflow/forgeflow-core/pkg/apis/config/settings"
	"github.com/forgeflow/forgeflow-core/pkg/apis/v1alpha1"
	"github.com/forgeflow/forgeflow-core/pkg/calendar"
	scheduler "github.com/forgeflow/forgeflow-core/pkg/controllers/planning/scheduling"
	"github.com/forgeflow/forgeflow-core/pkg/events"
	"github.com/forgeflow/forgeflow-core/pkg/logging"
	"github.com/forgeflow/forgeflow-core/pkg/utils/pretty"
)

// Snapshot is one consistent view of the scheduling inputs. The repository
// must copy its data before handing it over; the planner treats a snapshot
// as immutable from then on.
type Snapshot struct {
	Operations    []*v1alpha1.Operation
	WorkOrders    []*v1alpha1.WorkOrder
	Machines      []*v1alpha1.Machine
	Capabilities  []v1alpha1.MachineCapability
	Calendar      v1alpha1.Calendar
	SetupMatrix   []v1alpha1.SetupMatrixEntry
	ExistingSlots []*v1alpha1.ScheduleSlot
}

// Repository is the persistence boundary the embedding service implements.
type Repository interface {
	// Snapshot returns the scheduling inputs for the given work orders, or
	// for all open work orders when the scope is empty.
	Snapshot(ctx context.Context, workOrderIDs []string) (*Snapshot, error)
	// Store atomically replaces the plan's non-locked slots and buckets.
	Store(ctx context.Context, planID string, results *scheduler.Results) error
}

// PlanRequest parameterizes one planner run.
type PlanRequest struct {
	PlanID       string
	WorkOrderIDs []string
	Policy       v1alpha1.SchedulingPolicy
	PlanStart    time.Time
}

// Planner snapshots repository state, runs the scheduler, and persists the
// result. Concurrent requests for the same plan and mode (run or preview)
// collapse onto one run, and an unchanged input within the cache TTL is
// answered from the last result of the same mode.
type Planner struct {
	repo          Repository
	recorder      events.Recorder
	group         singleflight.Group
	results       *cache.Cache
	changeMonitor *pretty.ChangeMonitor
}

func NewPlanner(ctx context.Context, repo Repository, recorder events.Recorder) *Planner {
	ttl := settings.FromContext(ctx).PlanCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Planner{
		repo:          repo,
		recorder:      events.NewDedupeRecorder(recorder),
		results:       cache.New(ttl, ttl/2),
		changeMonitor: pretty.NewChangeMonitor(24 * time.Hour),
	}
}

// RunPlan schedules and persists a plan.
func (p *Planner) RunPlan(ctx context.Context, req PlanRequest) (*scheduler.Results, error) {
	return p.run(ctx, req, true)
}

// Preview schedules without persisting, for what-if requests.
func (p *Planner) Preview(ctx context.Context, req PlanRequest) (*scheduler.Results, error) {
	return p.run(ctx, req, false)
}

func (p *Planner) run(ctx context.Context, req PlanRequest, store bool) (*scheduler.Results, error) {
	if req.PlanID == "" {
		req.PlanID = uuid.NewString()
	}
	if req.PlanStart.IsZero() {
		req.PlanStart = time.Now().UTC()
	}
	results, err, _ := p.group.Do(fmt.Sprintf("%s/%t", req.PlanID, store), func() (any, error) {
		return p.solve(ctx, req, store)
	})
	if err != nil {
		return nil, err
	}
	return results.(*scheduler.Results), nil
}

func (p *Planner) solve(ctx context.Context, req PlanRequest, store bool) (*scheduler.Results, error) {
	logger := logging.FromContext(ctx).With("planID", req.PlanID)
	snapshot, err := p.repo.Snapshot(ctx, req.WorkOrderIDs)
	if err != nil {
		return nil, fmt.Errorf("snapshotting scheduling inputs, %w", err)
	}

	key, keyErr := hashstructure.Hash(struct {
		Snapshot *Snapshot
		Request  PlanRequest
	}{Snapshot: snapshot, Request: req}, hashstructure.FormatV2, nil)
	cacheKey := fmt.Sprintf("%s/%t/%d", req.PlanID, store, key)
	if keyErr == nil {
		if cached, found := p.results.Get(cacheKey); found {
			logger.Debugf("returning cached plan for unchanged inputs")
			return cached.(*scheduler.Results), nil
		}
	}
	if p.changeMonitor.HasChanged(req.PlanID, snapshot) {
		logger.With("operations", len(snapshot.Operations), "machines", len(snapshot.Machines)).Infof("planning inputs changed")
	}

	s := scheduler.NewScheduler(ctx, snapshot.Machines, snapshot.WorkOrders, snapshot.Capabilities,
		calendar.New(snapshot.Calendar), snapshot.SetupMatrix, req.Policy, snapshot.ExistingSlots, req.PlanID, req.PlanStart)
	results, err := s.Solve(ctx, snapshot.Operations)
	if err != nil {
		return nil, err
	}

	if store {
		if err := retry.Do(func() error {
			return p.repo.Store(ctx, req.PlanID, results)
		}, retry.Attempts(3), retry.LastErrorOnly(true)); err != nil {
			return nil, fmt.Errorf("storing plan %q, %w", req.PlanID, err)
		}
	}
	if keyErr == nil {
		p.results.SetDefault(cacheKey, results)
	}

	p.recorder.Publish(events.PlanCompleted(req.PlanID, results.Summary.ScheduledOperations, results.Summary.TotalOperations))
	for _, conflict := range results.Conflicts {
		p.recorder.Publish(events.ConflictDetected(conflict))
	}
	unplaced := results.Summary.TotalOperations - results.Summary.ScheduledOperations
	if unplaced > 0 {
		logger.Errorf("could not place %d operation(s)", unplaced)
		for _, conflict := range results.Conflicts {
			if conflict.Type == v1alpha1.ConflictResource {
				p.recorder.Publish(events.PlacementFailed(firstAffected(conflict), fmt.Errorf("%s", conflict.Description)))
			}
		}
	}
	return results, nil
}

func firstAffected(conflict v1alpha1.SchedulingConflict) string {
	return lo.FirstOrEmpty(conflict.AffectedOperations)
}
