/*
 * Copyright 2025 careforge.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package clinical

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/repository"
	"github.com/careforge/datakit/types"
)

// encounterFilterAllow is the field set a caller-supplied filter may touch.
var encounterFilterAllow = []string{
	"patientId", "status", "encounterClass", "priority", "serviceProvider",
}

// EncounterStatistics summarizes encounters by lifecycle state.
type EncounterStatistics struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// EncounterRepository specializes the generic repository for encounters.
type EncounterRepository struct {
	repository.Repository[Encounter]
}

// NewEncounterRepository returns an encounter repository over the provided
// handle.
func NewEncounterRepository(db bun.IDB, opts ...repository.Option) *EncounterRepository {
	return &EncounterRepository{Repository: repository.NewRepository[Encounter](db, opts...)}
}

// ListEncounters pages through active encounters, allowing caller filters on
// the whitelisted field set.
func (r *EncounterRepository) ListEncounters(ctx context.Context, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{FilterAllow: encounterFilterAllow})
}

// FindByPatientID pages through a patient's active encounters.
func (r *EncounterRepository) FindByPatientID(ctx context.Context, patientID string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter:      map[string]any{"patientId": patientID},
		FilterAllow: encounterFilterAllow,
	})
}

// FindByStatus pages through active encounters in the given status.
func (r *EncounterRepository) FindByStatus(ctx context.Context, status string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter:      map[string]any{"status": status},
		FilterAllow: encounterFilterAllow,
	})
}

// FindByClass pages through active encounters of the given class.
func (r *EncounterRepository) FindByClass(ctx context.Context, class string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter:      map[string]any{"encounterClass": class},
		FilterAllow: encounterFilterAllow,
	})
}

// FindByPriority pages through active encounters with the given priority.
func (r *EncounterRepository) FindByPriority(ctx context.Context, priority string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter:      map[string]any{"priority": priority},
		FilterAllow: encounterFilterAllow,
	})
}

// FindByServiceProvider pages through active encounters for one provider.
func (r *EncounterRepository) FindByServiceProvider(ctx context.Context, provider string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter:      map[string]any{"serviceProvider": provider},
		FilterAllow: encounterFilterAllow,
	})
}

// FindByDateRange pages through active encounters whose start date falls in
// the inclusive [from, to] window.
func (r *EncounterRepository) FindByDateRange(ctx context.Context, from, to time.Time, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter: map[string]any{
			"startDate": query.Range{From: from, To: to},
		},
		FilterAllow: encounterFilterAllow,
	})
}

// FindActive pages through encounters currently underway.
func (r *EncounterRepository) FindActive(ctx context.Context, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	return r.FindAll(ctx, req, &query.Options{
		Filter: map[string]any{
			"status": []string{StatusInProgress, StatusArrived},
		},
		FilterAllow: encounterFilterAllow,
	})
}

// SearchByReason pages through active encounters whose reason text or code
// contains the term.
func (r *EncounterRepository) SearchByReason(ctx context.Context, term string, req *types.PageRequest) (*types.PageResponse[Encounter], error) {
	var rq types.PageRequest
	if req != nil {
		rq = *req
	}
	rq.Search = term
	return r.FindAll(ctx, &rq, &query.Options{
		SearchFields: []string{"reasonText", "reasonCode"},
		FilterAllow:  encounterFilterAllow,
	})
}

// Statistics counts active encounters by lifecycle state.
func (r *EncounterRepository) Statistics(ctx context.Context) (*EncounterStatistics, error) {
	stats := &EncounterStatistics{}

	var err error
	if stats.Total, err = r.Count(ctx, map[string]any{"active": true}); err != nil {
		return nil, err
	}
	if stats.Active, err = r.Count(ctx, map[string]any{
		"active": true,
		"status": []string{StatusInProgress, StatusArrived},
	}); err != nil {
		return nil, err
	}
	if stats.Completed, err = r.Count(ctx, map[string]any{
		"active": true,
		"status": StatusFinished,
	}); err != nil {
		return nil, err
	}
	if stats.Cancelled, err = r.Count(ctx, map[string]any{
		"active": true,
		"status": StatusCancelled,
	}); err != nil {
		return nil, err
	}
	return stats, nil
}
