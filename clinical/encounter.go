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
	"time"

	"github.com/uptrace/bun"

	"github.com/careforge/datakit/database"
	"github.com/careforge/datakit/types"
)

// Encounter lifecycle statuses.
const (
	StatusPlanned        = "planned"
	StatusArrived        = "arrived"
	StatusInProgress     = "in-progress"
	StatusOnLeave        = "onleave"
	StatusFinished       = "finished"
	StatusCancelled      = "cancelled"
	StatusEnteredInError = "entered-in-error"
	StatusUnknown        = "unknown"
)

// Encounter classes.
const (
	ClassInpatient  = "inpatient"
	ClassOutpatient = "outpatient"
	ClassAmbulatory = "ambulatory"
	ClassEmergency  = "emergency"
	ClassHome       = "home"
	ClassField      = "field"
	ClassDaytime    = "daytime"
	ClassVirtual    = "virtual"
)

// Encounter priorities.
const (
	PriorityRoutine = "routine"
	PriorityUrgent  = "urgent"
	PriorityASAP    = "asap"
	PriorityStat    = "stat"
)

// Encounter is one interaction between a patient and the care organization,
// from admission or arrival through discharge.
type Encounter struct {
	bun.BaseModel `bun:"table:encounters,alias:e"`
	types.Entity

	PatientID       string     `bun:"patient_id,notnull" json:"patientId"`
	Status          string     `bun:"status,notnull,default:'planned'" json:"status"`
	Class           string     `bun:"encounter_class,notnull" json:"encounterClass"`
	Priority        string     `bun:"priority,notnull,default:'routine'" json:"priority"`
	StartDate       time.Time  `bun:"start_date,notnull" json:"startDate"`
	EndDate         *time.Time `bun:"end_date" json:"endDate,omitempty"`
	Length          int        `bun:"length" json:"length,omitempty"` // minutes
	ReasonCode      string     `bun:"reason_code" json:"reasonCode,omitempty"`
	ReasonText      string     `bun:"reason_text" json:"reasonText,omitempty"`
	ServiceProvider string     `bun:"service_provider" json:"serviceProvider,omitempty"`
}

// IsInProgress reports whether the encounter is currently underway.
func (e *Encounter) IsInProgress() bool {
	return e.Status == StatusInProgress || e.Status == StatusArrived
}

// IsCompleted reports whether the encounter has finished.
func (e *Encounter) IsCompleted() bool { return e.Status == StatusFinished }

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Encounter)(nil), 20))
}
