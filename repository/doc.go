// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, filtered queries, pagination, and soft deletion.
package repository
