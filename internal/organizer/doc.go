// Package organizer finalizes completed renders: verified copy into the
// output directory, then staging cleanup.
package organizer
