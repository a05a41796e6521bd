// Package clinical holds the patient and encounter domain models and their
// repositories, specialized over the generic repository engine.
package clinical
