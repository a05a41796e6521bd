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

// Administrative gender codes.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Patient is a person receiving care. Identifier is the business key
// (medical record number); ID remains the storage key.
type Patient struct {
	bun.BaseModel `bun:"table:patients,alias:p"`
	types.Entity

	Identifier string    `bun:"identifier,notnull,unique" json:"identifier"`
	FullName   string    `bun:"full_name,notnull" json:"fullName"`
	Gender     string    `bun:"gender,notnull" json:"gender"`
	BirthDate  time.Time `bun:"birth_date,notnull" json:"birthDate"`
	Phone      string    `bun:"phone" json:"phone,omitempty"`
	Email      string    `bun:"email" json:"email,omitempty"`
	Address    string    `bun:"address" json:"address,omitempty"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Patient)(nil), 10))
}
