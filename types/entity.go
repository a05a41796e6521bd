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

package types

import (
	"time"

	"github.com/google/uuid"
)

// Audit identity placeholders used when no request context is supplied.
const (
	SystemUser        = "system"
	SystemUserName    = "System"
	UnknownUserName   = "Unknown"
	DefaultSourceName = "datakit"
)

// Entity is the base record every domain model embeds. It carries identity,
// the soft-delete flag, audit fields, and multi-tenancy tags. The repository
// stamps these fields; domain code never assigns them directly.
type Entity struct {
	ID            string     `bun:"id,pk" json:"id"`
	Active        bool       `bun:"active,notnull,default:true" json:"active"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updatedAt"`
	CreatedBy     string     `bun:"created_by" json:"createdBy,omitempty"`
	UpdatedBy     string     `bun:"updated_by" json:"updatedBy,omitempty"`
	CreatedByName string     `bun:"created_by_name" json:"createdByName,omitempty"`
	UpdatedByName string     `bun:"updated_by_name" json:"updatedByName,omitempty"`
	TenantID      string     `bun:"tenant_id" json:"tenantId,omitempty"`
	SourceSystem  string     `bun:"source_system" json:"sourceSystem,omitempty"`
	Version       int64      `bun:"version" json:"version,omitempty"`
	Extensions    JsonObject `bun:"extensions" json:"extensions,omitempty"`
}

// NewEntity returns a base record initialized as active.
func NewEntity() Entity {
	return Entity{Active: true}
}

// Auditable is the capability set the repository requires from a model
// pointer. *Entity implements it, so embedding Entity is enough.
type Auditable interface {
	GetID() string
	SetID(id string)
	IsActive() bool
	SetActive(active bool)
	StampCreate(now time.Time, rctx *RequestContext)
	StampUpdate(now time.Time, rctx *RequestContext)
}

func (e *Entity) GetID() string         { return e.ID }
func (e *Entity) SetID(id string)       { e.ID = id }
func (e *Entity) IsActive() bool        { return e.Active }
func (e *Entity) SetActive(active bool) { e.Active = active }

// StampCreate assigns identity and audit fields for a brand-new record.
// A missing context degrades to the "system" placeholders and never blocks.
func (e *Entity) StampCreate(now time.Time, rctx *RequestContext) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Active = true
	e.CreatedAt = now
	e.UpdatedAt = now

	id, name := rctx.Identity(SystemUserName)
	e.CreatedBy = id
	e.CreatedByName = name
	e.UpdatedBy = id
	e.UpdatedByName = name
	if e.TenantID == "" && rctx != nil {
		e.TenantID = rctx.TenantID
	}
}

// StampUpdate refreshes the mutation audit fields. CreatedAt/CreatedBy are
// left untouched.
func (e *Entity) StampUpdate(now time.Time, rctx *RequestContext) {
	e.UpdatedAt = now
	e.UpdatedBy, e.UpdatedByName = rctx.Identity(SystemUserName)
}
