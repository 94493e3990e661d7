// Package recipe implements recipe storage and its HTTP surface: create,
// read, update, delete, and the public cursor-paginated listing.
package recipe
