// Package events carries in-process notifications between the attempt log
// and the components that derive state from it. Emission is synchronous and
// handlers run in registration order.
package events
