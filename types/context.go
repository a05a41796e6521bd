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

// Principal identifies the acting user for audit stamping.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequestContext is the consumed-only context boundary: an optional acting
// principal and tenant, passed into mutating repository operations. Absence
// is legal and degrades to the system placeholders.
type RequestContext struct {
	User     *Principal `json:"user,omitempty"`
	TenantID string     `json:"tenantId,omitempty"`
}

// Identity returns the audit identity pair, falling back to the "system"
// user and the supplied placeholder name when the context or its fields are
// missing. A nil receiver is valid.
func (c *RequestContext) Identity(fallbackName string) (id, name string) {
	if c == nil || c.User == nil || c.User.ID == "" {
		return SystemUser, fallbackName
	}
	if c.User.Name == "" {
		return c.User.ID, fallbackName
	}
	return c.User.ID, c.User.Name
}
