package ratelimit

import "time"

// Class is the static rate-limit classification of a route, assigned at
// route-registration time.
type Class string

const (
	ClassAuth      Class = "auth"
	ClassMessaging Class = "messaging"
	ClassGeneral   Class = "general"
)

// Policy is the fixed-window budget for one endpoint class.
type Policy struct {
	Class   Class
	Max     int
	Window  time.Duration
	Message string
}
