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
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/careforge/datakit/database"
	"github.com/careforge/datakit/query"
	"github.com/careforge/datakit/repository"
	"github.com/careforge/datakit/types"
)

// ErrDuplicateIdentifier reports a patient identifier that is already in use.
var ErrDuplicateIdentifier = errors.New("patient identifier already in use")

// patientFilterAllow is the field set a caller-supplied filter may touch.
var patientFilterAllow = []string{"identifier", "gender", "birthDate"}

// PatientRepository specializes the generic repository for patients.
type PatientRepository struct {
	repository.Repository[Patient]
}

// NewPatientRepository returns a patient repository over the provided handle.
func NewPatientRepository(db bun.IDB, opts ...repository.Option) *PatientRepository {
	return &PatientRepository{Repository: repository.NewRepository[Patient](db, opts...)}
}

// CreatePatient inserts a new patient, translating a unique-constraint
// violation on the identifier into ErrDuplicateIdentifier.
func (r *PatientRepository) CreatePatient(ctx context.Context, p *Patient, rctx *types.RequestContext) (*Patient, error) {
	created, err := r.Create(ctx, p, rctx)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("identifier %q: %w", p.Identifier, ErrDuplicateIdentifier)
		}
		return nil, err
	}
	return created, nil
}

// FindByIdentifier looks up an active patient by business identifier;
// (nil, nil) when absent.
func (r *PatientRepository) FindByIdentifier(ctx context.Context, identifier string) (*Patient, error) {
	return r.FindOne(ctx, map[string]any{
		"identifier": identifier,
		"active":     true,
	})
}

// SearchByName pages through active patients whose name or identifier
// contains the term.
func (r *PatientRepository) SearchByName(ctx context.Context, term string, req *types.PageRequest) (*types.PageResponse[Patient], error) {
	var rq types.PageRequest
	if req != nil {
		rq = *req
	}
	rq.Search = term
	return r.FindAll(ctx, &rq, &query.Options{
		SearchFields: []string{"fullName", "identifier"},
		FilterAllow:  patientFilterAllow,
	})
}

// ListPatients pages through active patients, allowing caller filters on a
// fixed field set.
func (r *PatientRepository) ListPatients(ctx context.Context, req *types.PageRequest) (*types.PageResponse[Patient], error) {
	return r.FindAll(ctx, req, &query.Options{
		SearchFields: []string{"fullName", "identifier"},
		FilterAllow:  patientFilterAllow,
	})
}
